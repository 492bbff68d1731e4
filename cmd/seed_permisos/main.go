// seed_permisos genera el script SQL del catálogo de permisos a partir de la exportación
// del sistema anterior (Windows-1252, separada por ';').
//
// Formato por línea: perm_code;categoria;descripcion[;roles]
// roles es opcional y lista, separados por coma, los roles que parten con el permiso concedido.
//
// Uso: go run ./cmd/seed_permisos [ruta/permisos.csv]
// Escribe: internal/infrastructure/postgres/migrations/002_seed_permissions.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	csvPath := "permisos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir archivo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_permissions.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	grants, err := writeSQL(out, rows, filepath.Base(csvPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d permisos, %d concesiones iniciales\n", outPath, len(rows), grants)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
