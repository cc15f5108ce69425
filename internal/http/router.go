package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vidtube/internal/service"
)

// RouterOptions agrupa lo que el router necesita además de los handlers.
type RouterOptions struct {
	// MediaDir, si no está vacío, se sirve en MediaURL (driver local).
	MediaDir string
	MediaURL string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	subH *SubscriptionHandler,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.MediaDir != "" && opts.MediaURL != "" {
		r.Static(opts.MediaURL, opts.MediaDir)
	}

	api := r.Group("/api/v1", jsonContentTypeMiddleware())
	auth := JWTAuthMiddleware(jwtSvc)

	users := api.Group("/users")
	users.POST("/register", userH.Register)
	users.POST("/login", userH.Login)
	users.POST("/refresh-token", userH.RefreshToken)
	users.POST("/logout", auth, userH.Logout)
	users.POST("/change-password", auth, userH.ChangePassword)
	users.GET("/current-user", auth, userH.CurrentUser)
	users.PATCH("/account", auth, userH.UpdateAccount)
	users.PATCH("/avatar", auth, userH.UpdateAvatar)
	users.PATCH("/cover-image", auth, userH.UpdateCoverImage)
	users.GET("/c/:username", auth, subH.ChannelProfile)

	subs := api.Group("/subscriptions", auth)
	subs.POST("/c/:channelId", subH.Subscribe)
	subs.DELETE("/c/:channelId", subH.Unsubscribe)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en las respuestas de la API.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
