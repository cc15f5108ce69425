package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"
)

const defaultUploadTimeout = 30 * time.Second

// UserService coordina registro, login, logout, refresh y cambios de perfil.
// No guarda usuarios entre requests: cada operación lee del repositorio.
type UserService struct {
	logger        *zap.Logger
	users         repository.UserRepository
	hasher        PasswordHasher
	tokens        *JWTService
	uploader      media.Uploader
	uploadTimeout time.Duration
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens *JWTService,
	uploader media.Uploader,
	uploadTimeout time.Duration,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uploadTimeout <= 0 {
		uploadTimeout = defaultUploadTimeout
	}
	return &UserService{
		logger:        logger,
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		uploader:      uploader,
		uploadTimeout: uploadTimeout,
	}
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult es el usuario sin secretos más el par de tokens emitido.
type LoginResult struct {
	User   domain.User
	Tokens TokenPair
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := normalizeEmail(input.Email)
	username := normalizeUsername(input.Username)

	var missing []string
	if fullName == "" {
		missing = append(missing, "fullname is required")
	}
	if email == "" {
		missing = append(missing, "email is required")
	}
	if username == "" {
		missing = append(missing, "username is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		missing = append(missing, "password is required")
	}
	if len(missing) > 0 {
		return domain.User{}, domain.Validation("All fields are required", missing...)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, domain.Conflict("User with email or username already exists")
	}

	if strings.TrimSpace(input.AvatarPath) == "" {
		return domain.User{}, domain.Validation("Avatar file is required")
	}

	avatar, cover, err := s.uploadProfileImages(ctx, input.AvatarPath, input.CoverImagePath)
	if err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar,
		CoverImage:   cover,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.User{}, domain.Conflict("User with email or username already exists")
		}
		return domain.User{}, err
	}

	return user.Public(), nil
}

func (s *UserService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	username := normalizeUsername(input.Username)
	email := normalizeEmail(input.Email)
	if username == "" && email == "" {
		return LoginResult{}, domain.Validation("username or email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return LoginResult{}, domain.Validation("password is required")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, domain.NotFound("User does not exist")
		}
		return LoginResult{}, err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return LoginResult{}, domain.Unauthorized("Invalid user credentials")
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user.Public(), Tokens: tokens}, nil
}

// Logout vacía el slot de refresh token; el access token sigue válido hasta expirar.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Unauthorized("Invalid access token")
		}
		return err
	}
	return nil
}

// Refresh valida el refresh token contra el guardado y lo rota.
// El token presentado queda inutilizable aunque siga firmado y vigente.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, domain.Unauthorized("Unauthorized request")
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, domain.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, domain.Unauthorized("Invalid refresh token")
		}
		return TokenPair{}, err
	}
	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return TokenPair{}, domain.Unauthorized("Refresh token is expired or used")
	}

	tokens, err := s.tokens.GeneratePair(user)
	if err != nil {
		s.logger.Error("jwt issue failed", zap.Error(err), zap.String("user_id", user.ID))
		return TokenPair{}, domain.Dependency("Something went wrong while generating tokens", err)
	}

	// Update condicional: si otro refresh rotó primero, este pierde.
	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, tokens.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, domain.Unauthorized("Refresh token is expired or used")
		}
		s.logger.Error("rotate refresh token failed", zap.Error(err), zap.String("user_id", user.ID))
		return TokenPair{}, domain.Dependency("Something went wrong while generating tokens", err)
	}
	return tokens, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(oldPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return domain.Validation("oldPassword and newPassword are required")
	}

	user, err := s.getAuthenticated(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.Unauthorized("Invalid old password")
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Unauthorized("Invalid access token")
		}
		return err
	}
	return nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.getAuthenticated(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return user.Public(), nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email string) (domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return domain.User{}, domain.Validation("All fields are required")
	}

	user, err := s.users.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return domain.User{}, domain.Conflict("Email is already in use")
		case errors.Is(err, repository.ErrNotFound):
			return domain.User{}, domain.Unauthorized("Invalid access token")
		default:
			return domain.User{}, err
		}
	}
	return user.Public(), nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (domain.User, error) {
	if strings.TrimSpace(localPath) == "" {
		return domain.User{}, domain.Validation("Avatar file is missing")
	}
	url, err := s.upload(ctx, localPath)
	if err != nil {
		s.logger.Warn("avatar upload failed", zap.Error(err), zap.String("user_id", userID))
		return domain.User{}, uploadError(err, "Avatar")
	}
	return s.applyImage(ctx, userID, url, s.users.UpdateAvatar)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (domain.User, error) {
	if strings.TrimSpace(localPath) == "" {
		return domain.User{}, domain.Validation("Cover image file is missing")
	}
	url, err := s.upload(ctx, localPath)
	if err != nil {
		s.logger.Warn("cover image upload failed", zap.Error(err), zap.String("user_id", userID))
		return domain.User{}, uploadError(err, "Cover image")
	}
	return s.applyImage(ctx, userID, url, s.users.UpdateCoverImage)
}

func (s *UserService) applyImage(
	ctx context.Context,
	userID, url string,
	update func(ctx context.Context, id, url string) (domain.User, error),
) (domain.User, error) {
	user, err := update(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, domain.Unauthorized("Invalid access token")
		}
		return domain.User{}, err
	}
	return user.Public(), nil
}

// startSession emite el par y lo guarda como único refresh token vigente.
func (s *UserService) startSession(ctx context.Context, user domain.User) (TokenPair, error) {
	tokens, err := s.tokens.GeneratePair(user)
	if err != nil {
		s.logger.Error("jwt issue failed", zap.Error(err), zap.String("user_id", user.ID))
		return TokenPair{}, domain.Dependency("Something went wrong while generating tokens", err)
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		s.logger.Error("store refresh token failed", zap.Error(err), zap.String("user_id", user.ID))
		return TokenPair{}, domain.Dependency("Something went wrong while generating tokens", err)
	}
	return tokens, nil
}

func (s *UserService) getAuthenticated(ctx context.Context, userID string) (domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, domain.Unauthorized("Unauthorized request")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, domain.Unauthorized("Invalid access token")
		}
		return domain.User{}, err
	}
	return user, nil
}

// uploadProfileImages sube avatar y cover en paralelo; cualquiera que falle aborta el registro.
func (s *UserService) uploadProfileImages(ctx context.Context, avatarPath, coverPath string) (string, string, error) {
	var avatarURL, coverURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.upload(gctx, avatarPath)
		if err != nil {
			s.logger.Warn("avatar upload failed", zap.Error(err))
			return uploadError(err, "Avatar")
		}
		avatarURL = url
		return nil
	})
	if strings.TrimSpace(coverPath) != "" {
		g.Go(func() error {
			url, err := s.upload(gctx, coverPath)
			if err != nil {
				s.logger.Warn("cover image upload failed", zap.Error(err))
				return uploadError(err, "Cover image")
			}
			coverURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return avatarURL, coverURL, nil
}

// upload aplica el timeout configurado; no hay reintentos.
func (s *UserService) upload(ctx context.Context, localPath string) (string, error) {
	if s.uploader == nil {
		return "", errors.New("media uploader not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	asset, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return "", err
	}
	if asset.URL == "" {
		return "", media.ErrNoURL
	}
	return asset.URL, nil
}

// uploadError separa un archivo que no es imagen (400) de una falla del storage (500).
func uploadError(err error, label string) error {
	if errors.Is(err, media.ErrUnsupportedType) {
		return domain.Validation(label + " must be a PNG, JPEG, GIF or WebP image")
	}
	return domain.Dependency("Error while uploading "+strings.ToLower(label), err)
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Validation("password must be at most 72 bytes")
		}
		return "", err
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
