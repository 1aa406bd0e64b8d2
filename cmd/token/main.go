// Command token issues an access token signed with JWT_SECRET_KEY, for local testing
// against the attendance API.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
)

func main() {
	employeeCode := flag.String("employee", "", "employee code to put in the token")
	role := flag.String("role", string(jwt.RoleEmployee), "role claim: employee, admin or owner")
	flag.Parse()

	if *employeeCode == "" {
		log.Fatal("-employee is required")
	}
	switch jwt.Role(*role) {
	case jwt.RoleEmployee, jwt.RoleAdmin, jwt.RoleOwner:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
		GenerateAccessToken(*employeeCode, jwt.Role(*role))
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println(token)
	log.Printf("expires at %s", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
