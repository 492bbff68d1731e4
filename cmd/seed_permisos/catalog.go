package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

type catalogRow struct {
	code        string
	category    string
	description string
	roles       []entity.Role
}

// parseCatalog decodifica Windows-1252 y valida cada línea. Una cabecera "perm_code;..." se omite.
// Un código repetido conserva la última aparición.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	byCode := map[string]catalogRow{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "perm_code") {
			continue
		}
		if len(rec) < 3 || len(rec) > 4 {
			return nil, fmt.Errorf("línea %d: se esperaban 3 o 4 campos, hay %d", line, len(rec))
		}
		row := catalogRow{
			code:        strings.TrimSpace(rec[0]),
			category:    strings.TrimSpace(rec[1]),
			description: strings.TrimSpace(rec[2]),
		}
		if row.code == "" {
			return nil, fmt.Errorf("línea %d: perm_code vacío", line)
		}
		if len(rec) == 4 {
			roles, err := parseRoles(rec[3])
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", line, err)
			}
			row.roles = roles
		}
		byCode[row.code] = row
	}

	rows := make([]catalogRow, 0, len(byCode))
	for _, row := range byCode {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].code < rows[j].code })
	return rows, nil
}

// parseRoles admin se ignora: has_permission ya lo concede siempre.
func parseRoles(field string) ([]entity.Role, error) {
	var roles []entity.Role
	for _, part := range strings.Split(field, ",") {
		role := entity.Role(strings.ToLower(strings.TrimSpace(part)))
		if role == "" || role.IsAdmin() {
			continue
		}
		if !role.IsValid() {
			return nil, fmt.Errorf("rol desconocido %q", part)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// writeSQL el catálogo se actualiza en cada corrida; las concesiones sólo se insertan si el par
// no existe, para no pisar lo editado desde la matriz. Devuelve el número de concesiones.
func writeSQL(w io.Writer, rows []catalogRow, source string) (int, error) {
	var b strings.Builder
	b.WriteString("-- Catálogo de permisos\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)

	if len(rows) == 0 {
		b.WriteString("-- (sin permisos)\n")
		_, err := io.WriteString(w, b.String())
		return 0, err
	}

	b.WriteString("-- 1. Permisos\n")
	b.WriteString("INSERT INTO permissions (perm_code, category, description) VALUES\n")
	for i, row := range rows {
		fmt.Fprintf(&b, "  ('%s', %s, %s)", escapeSQL(row.code), nullable(row.category), nullable(row.description))
		if i < len(rows)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (perm_code) DO UPDATE SET category = EXCLUDED.category, description = EXCLUDED.description;\n\n")

	var grants []string
	for _, row := range rows {
		for _, role := range row.roles {
			grants = append(grants, fmt.Sprintf("  ('%s', '%s', TRUE)", role, escapeSQL(row.code)))
		}
	}
	if len(grants) > 0 {
		b.WriteString("-- 2. Concesiones iniciales\n")
		b.WriteString("INSERT INTO role_permissions (role, perm_code, allowed) VALUES\n")
		b.WriteString(strings.Join(grants, ",\n"))
		b.WriteString("\nON CONFLICT (role, perm_code) DO NOTHING;\n")
	}

	_, err := io.WriteString(w, b.String())
	return len(grants), err
}

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
