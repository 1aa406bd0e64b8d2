package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
)

const TokenTypeAccess = "access"

// Service issues and verifies access tokens. Tokens are normally issued by the identity
// service; GenerateAccessToken exists for operators and tests.
type Service interface {
	GenerateAccessToken(employeeCode string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(employeeCode string, role Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_code": employeeCode,
		"role":          string(role),
		"type":          TokenTypeAccess,
		"exp":           expiresAt,
	})
	return tokenString, expiresAt, err
}
