// devtoken emite un JWT firmado con JWT_SECRET para probar la API localmente.
//
// Uso: go run ./cmd/devtoken -role bodeguero -company <uuid> [-user <uuid>]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-farmacia/pkg/config"
	"github.com/jhoicas/Inventario-farmacia/pkg/jwt"
)

func main() {
	role := flag.String("role", jwt.RoleAdmin, "admin | bodeguero | vendedor")
	companyID := flag.String("company", "", "ID de la empresa (obligatorio)")
	userID := flag.String("user", "", "ID del usuario (por defecto uno aleatorio)")
	flag.Parse()

	if !jwt.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "rol inválido: %q\n", *role)
		os.Exit(2)
	}
	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "-company es obligatorio")
		os.Exit(2)
	}
	if *userID == "" {
		*userID = uuid.New().String()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *companyID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
