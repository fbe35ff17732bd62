// internal/api/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"txt-converter-service/internal/api/responses"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Chaves usadas no gin.Context.
const (
	ContextUsername = "username"
	ContextRoles    = "roles"
)

// Claims segue o token emitido pelo serviço de autenticação: username, roles e exp.
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// ParseToken valida um token HS256 e devolve as claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token inválido")
	}
	return claims, nil
}

// RequireJWT exige "Authorization: Bearer <token>" assinado com secret.
func RequireJWT(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			responses.Error(c, http.StatusUnauthorized, "Token de acesso ausente")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(tokenString), secret)
		if err != nil {
			responses.Error(c, http.StatusUnauthorized, "Token de acesso inválido", err.Error())
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRoles, claims.Roles)
		c.Next()
	}
}
