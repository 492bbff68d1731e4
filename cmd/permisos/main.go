// permisos edita la matriz rol × permiso contra el endpoint de administración.
//
// Uso:
//
//	go run ./cmd/permisos -url http://localhost:8080 -user admin
//	go run ./cmd/permisos -c "rol comercial si; guardar"
//
// La contraseña se lee de ADMIN_API_PASSWORD; también se acepta un token ya emitido en ADMIN_API_TOKEN.
// Sin -c los comandos se leen de la entrada estándar.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/infrastructure/adminapi"
	"github.com/jhoicas/Ordenes-api/pkg/config"
)

func main() {
	cfg := config.LoadClient()

	url := flag.String("url", cfg.AdminAPI.URL, "URL base del API")
	token := flag.String("token", cfg.AdminAPI.Token, "JWT de un usuario admin")
	user := flag.String("user", "", "usuario admin (la contraseña se lee de ADMIN_API_PASSWORD)")
	script := flag.String("c", "", "comandos separados por ';' en lugar de la entrada estándar")
	filter := flag.String("filtro", "", "filtro inicial")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := adminapi.NewClient(*url, *token)
	if *user != "" {
		if _, err := client.Login(ctx, *user, os.Getenv("ADMIN_API_PASSWORD")); err != nil {
			fmt.Fprintf(os.Stderr, "Login: %v\n", err)
			os.Exit(1)
		}
	}
	if client.Token() == "" {
		fmt.Fprintln(os.Stderr, "Se requiere -token, ADMIN_API_TOKEN o -user")
		os.Exit(2)
	}

	editor := permissions.NewEditor(client)
	if err := editor.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Cargar matriz: %v\n", err)
		os.Exit(1)
	}
	editor.SetFilter(*filter)

	s := newSession(editor, os.Stdout)
	var in io.Reader = os.Stdin
	if *script != "" {
		in = strings.NewReader(strings.ReplaceAll(*script, ";", "\n"))
	}
	if err := run(ctx, s, in, *script == ""); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if editor.HasPending() {
		fmt.Fprintf(os.Stderr, "Aviso: %d cambios pendientes sin guardar fueron descartados\n", len(editor.Pending()))
	}
}

// run lee comandos línea por línea. En modo interactivo los errores se muestran y la sesión continúa.
func run(ctx context.Context, s *session, in io.Reader, interactive bool) error {
	sc := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(s.out, "permisos> ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		err := s.exec(ctx, sc.Text())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil && interactive:
			fmt.Fprintf(s.out, "error: %v\n", err)
		case err != nil:
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
