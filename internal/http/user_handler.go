package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vidtube/internal/domain"
	"vidtube/internal/service"
)

// UserHandler mantiene dependencias para endpoints de cuenta y sesión.
type UserHandler struct {
	logger    *zap.Logger
	userServ  *service.UserService
	cookies   sessionCookies
	uploadDir string
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
// Los TTL de las cookies salen del JWTService para que coincidan con los tokens.
func NewUserHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	jwtServ *service.JWTService,
	uploadDir string,
	secureCookies bool,
) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		cookies: sessionCookies{
			secure:     secureCookies,
			accessTTL:  jwtServ.AccessTTL(),
			refreshTTL: jwtServ.RefreshTTL(),
		},
		uploadDir: uploadDir,
	}
}

// Register maneja POST /api/v1/users/register (multipart).
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		FullName string `form:"fullname"`
		Email    string `form:"email"`
		Username string `form:"username"`
		Password string `form:"password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondError(c, h.logger, bindError(err))
		return
	}

	files := &stagedFiles{dir: h.uploadDir, logger: h.logger}
	defer files.cleanup()

	avatarPath, err := files.stage(c, "avatar")
	if err != nil {
		h.logger.Warn("stage avatar failed", zap.Error(err))
		respondError(c, h.logger, domain.Validation("Invalid avatar upload"))
		return
	}
	coverPath, err := files.stage(c, "coverImage")
	if err != nil {
		h.logger.Warn("stage cover image failed", zap.Error(err))
		respondError(c, h.logger, domain.Validation("Invalid cover image upload"))
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login maneja POST /api/v1/users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, h.logger, bindError(err))
		return
	}

	result, err := h.userServ.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.cookies.set(c, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	respond(c, http.StatusOK, gin.H{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout maneja POST /api/v1/users/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	if err := h.userServ.Logout(c.Request.Context(), claims.UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.cookies.clear(c)
	respond(c, http.StatusOK, gin.H{}, "User logged out")
}

// RefreshToken maneja POST /api/v1/users/refresh-token. Acepta la cookie
// refreshToken o {"refreshToken": "..."} en el body.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" && c.Request.ContentLength != 0 {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Debug("refresh body ignored", zap.Error(err))
		}
		token = req.RefreshToken
	}
	if token == "" {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	pair, err := h.userServ.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.cookies.set(c, pair.AccessToken, pair.RefreshToken)
	respond(c, http.StatusOK, pair, "Access token refreshed")
}

// ChangePassword maneja POST /api/v1/users/change-password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	if err := h.userServ.ChangePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

// CurrentUser maneja GET /api/v1/users/current-user.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	user, err := h.userServ.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount maneja PATCH /api/v1/users/account.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	var req struct {
		FullName string `json:"fullName" binding:"required"`
		Email    string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	user, err := h.userServ.UpdateAccount(c.Request.Context(), claims.UserID, req.FullName, req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar maneja PATCH /api/v1/users/avatar.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.userServ.UpdateAvatar, "Avatar updated successfully")
}

// UpdateCoverImage maneja PATCH /api/v1/users/cover-image.
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.userServ.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, userID, localPath string) (domain.User, error)

func (h *UserHandler) updateImage(c *gin.Context, field string, update imageUpdater, message string) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, h.logger, domain.Unauthorized("Unauthorized request"))
		return
	}

	files := &stagedFiles{dir: h.uploadDir, logger: h.logger}
	defer files.cleanup()

	localPath, err := files.stage(c, field)
	if err != nil {
		h.logger.Warn("stage image failed", zap.String("field", field), zap.Error(err))
		respondError(c, h.logger, domain.Validation("Invalid "+field+" upload"))
		return
	}

	user, err := update(c.Request.Context(), claims.UserID, localPath)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user, message)
}
