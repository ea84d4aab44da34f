// issue_token emite un JWT firmado con JWT_SECRET para un usuario y rol.
//
// Uso: go run ./cmd/issue_token <user_id> <admin|bodeguero|vendedor>
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/jwt"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "uso: issue_token <user_id> <admin|bodeguero|vendedor>")
		os.Exit(2)
	}
	switch os.Args[2] {
	case "admin", "bodeguero", "vendedor":
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido: %s\n", os.Args[2])
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	token, err := jwt.Generate(cfg.JWT.Secret, os.Args[1], os.Args[2], cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
