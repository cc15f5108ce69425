package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vidtube/internal/domain"
	"vidtube/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el access token (cookie o header Bearer) y guarda
// los claims en el contexto. Los handlers los leen con GetAuthClaims.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			respondError(c, nil, domain.Dependency("jwt not configured", nil))
			return
		}

		token := accessTokenFromRequest(c)
		if token == "" {
			respondError(c, nil, domain.Unauthorized("Unauthorized request"))
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			respondError(c, nil, domain.Unauthorized("Invalid access token"))
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// accessTokenFromRequest prefiere el header Bearer explícito y solo cae a la cookie si no viene.
func accessTokenFromRequest(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		if token := strings.TrimSpace(header[len("Bearer "):]); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
