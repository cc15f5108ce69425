package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// sessionCookies escribe y borra las cookies httpOnly de la sesión.
type sessionCookies struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (s sessionCookies) set(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, accessToken, int(s.accessTTL.Seconds()), "/", "", s.secure, true)
	c.SetCookie(refreshTokenCookie, refreshToken, int(s.refreshTTL.Seconds()), "/", "", s.secure, true)
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", s.secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", s.secure, true)
}
