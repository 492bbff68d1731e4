package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

var errQuit = errors.New("salir")

const helpText = `Comandos:
  lista                     matriz visible agrupada por categoría
  filtro [texto]            filtra por código, descripción o categoría (vacío limpia)
  toggle ROL PERMISO        invierte un par
  permitir ROL PERMISO      marca un par como permitido
  denegar ROL PERMISO       marca un par como denegado
  rol ROL si|no             aplica a todos los permisos visibles del rol
  permiso PERMISO si|no     aplica a todos los roles editables
  pendientes                cambios sin guardar
  descartar                 descarta los cambios sin guardar
  guardar                   envía los cambios en un único lote
  recargar                  vuelve a leer la matriz del servidor
  salir
`

// session interpreta comandos de texto sobre un Editor.
type session struct {
	editor *permissions.Editor
	out    io.Writer
}

func newSession(editor *permissions.Editor, out io.Writer) *session {
	return &session{editor: editor, out: out}
}

// exec ejecuta una línea. Devuelve errQuit para terminar la sesión.
func (s *session) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "ayuda", "help", "?":
		fmt.Fprint(s.out, helpText)
	case "salir", "exit", "quit":
		return errQuit
	case "lista", "ls":
		s.printMatrix()
	case "filtro":
		s.editor.SetFilter(strings.Join(args, " "))
		fmt.Fprintf(s.out, "%d permisos visibles\n", len(s.editor.VisiblePermissions()))
	case "toggle", "permitir", "denegar":
		if len(args) != 2 {
			return fmt.Errorf("uso: %s ROL PERMISO", cmd)
		}
		role, err := parseRole(args[0])
		if err != nil {
			return err
		}
		if err := s.knownPermission(args[1]); err != nil {
			return err
		}
		switch cmd {
		case "toggle":
			s.editor.Toggle(role, args[1])
		default:
			want := cmd == "permitir"
			if s.editor.CurrentValue(role, args[1]) != want {
				s.editor.Toggle(role, args[1])
			}
		}
		s.printPendingCount()
	case "rol":
		if len(args) != 2 {
			return errors.New("uso: rol ROL si|no")
		}
		role, err := parseRole(args[0])
		if err != nil {
			return err
		}
		enabled, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		s.editor.BulkSetForRole(role, enabled)
		s.printPendingCount()
	case "permiso":
		if len(args) != 2 {
			return errors.New("uso: permiso PERMISO si|no")
		}
		if err := s.knownPermission(args[0]); err != nil {
			return err
		}
		enabled, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		s.editor.BulkSetForPermission(args[0], enabled)
		s.printPendingCount()
	case "pendientes":
		s.printPending()
	case "descartar":
		s.editor.Discard()
		fmt.Fprintln(s.out, "cambios descartados")
	case "guardar":
		res, err := s.editor.Save(ctx)
		if res.Notice != "" {
			fmt.Fprintln(s.out, res.Notice)
		}
		return err
	case "recargar":
		if err := s.editor.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "matriz recargada")
		s.printPendingCount()
	default:
		return fmt.Errorf("comando desconocido %q (use ayuda)", cmd)
	}
	return nil
}

func (s *session) knownPermission(code string) error {
	for _, p := range s.editor.VisiblePermissions() {
		if p.Code == code {
			return nil
		}
	}
	return fmt.Errorf("permiso %q no existe o no está visible con el filtro actual", code)
}

func (s *session) printMatrix() {
	roles := entity.EditableRoles()
	w := tabwriter.NewWriter(s.out, 0, 2, 2, ' ', 0)
	header := []string{"PERMISO"}
	for _, r := range roles {
		header = append(header, strings.ToUpper(r.String()))
	}
	for _, g := range s.editor.Categories() {
		fmt.Fprintf(w, "[%s]\n", g.Category)
		fmt.Fprintln(w, strings.Join(header, "\t"))
		for _, p := range g.Permissions {
			row := []string{p.Code}
			for _, r := range roles {
				row = append(row, mark(s.editor.CurrentValue(r, p.Code)))
			}
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
	}
	_ = w.Flush()
}

func (s *session) printPendingCount() {
	fmt.Fprintf(s.out, "%d cambios pendientes\n", len(s.editor.Pending()))
}

func (s *session) printPending() {
	pending := s.editor.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(s.out, "sin cambios pendientes")
		return
	}
	for _, pc := range pending {
		fmt.Fprintf(s.out, "%s %s -> %s\n", pc.Role, pc.PermCode, mark(pc.Allowed))
	}
}

func mark(allowed bool) string {
	if allowed {
		return "si"
	}
	return "no"
}

func parseRole(s string) (entity.Role, error) {
	role := entity.Role(strings.ToLower(s))
	if !role.IsValid() {
		return "", fmt.Errorf("rol desconocido %q", s)
	}
	if role.IsAdmin() {
		return "", errors.New("los permisos de admin no se pueden modificar")
	}
	return role, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "si", "sí", "on", "true", "1":
		return true, nil
	case "no", "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("valor %q inválido, use si o no", s)
}
