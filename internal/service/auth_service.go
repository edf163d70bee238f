package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type resetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	FindActive(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
}

type accountNotifier interface {
	SendPasswordReset(ctx context.Context, to, name, token string, validity time.Duration) error
	SendWelcome(ctx context.Context, to, name, role string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	ResetTokenTTL     time.Duration
}

// RequestMeta carries caller details recorded in the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthService provides the account lifecycle: register, login and password reset.
type AuthService struct {
	users        authUserRepository
	resets       resetTokenRepository
	universities universityLookup
	notifier     accountNotifier
	audit        *AuditService
	validator    *validator.Validate
	logger       *zap.Logger
	config       AuthConfig
}

// NewAuthService constructs an AuthService. notifier and audit may be nil.
func NewAuthService(
	users authUserRepository,
	resets resetTokenRepository,
	universities universityLookup,
	notifier accountNotifier,
	audit *AuditService,
	validate *validator.Validate,
	logger *zap.Logger,
	config AuthConfig,
) *AuthService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		users:        users,
		resets:       resets,
		universities: universities,
		notifier:     notifier,
		audit:        audit,
		validator:    validate,
		logger:       logger,
		config:       config,
	}
}

// Register creates an account.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest, meta RequestMeta) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "register")
	}
	email := normalizeEmail(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, duplicate("email")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to fetch user")
	}

	universityID := normalizeOptional(&req.UniversityID)
	if universityID != nil && s.universities != nil {
		if _, err := s.universities.FindByID(ctx, *universityID); err != nil {
			return nil, loadError(err, "university")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     trimmed(req.FullName),
		Role:         models.UserRole(req.Role),
		UniversityID: universityID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, writeError(err, "user", "create")
	}

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, user.Email, user.FullName, string(user.Role)); err != nil {
			s.logger.Warn("failed to queue welcome mail", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:     user.ID,
		Action:     models.AuditActionRegister,
		Resource:   "auth",
		ResourceID: user.ID,
		Payload:    map[string]string{"role": string(user.Role)},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})

	info := userInfo(user)
	return &info, nil
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, meta RequestMeta) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "login")
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Internal(err, "failed to fetch user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	accessToken, issuedAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:     user.ID,
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: user.ID,
		Payload:    map[string]string{"status": "success"},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        userInfo(user),
	}, nil
}

// ForgetPassword issues a single-use reset token and mails the link. Unknown
// emails succeed silently so accounts cannot be enumerated.
func (s *AuthService) ForgetPassword(ctx context.Context, req dto.ForgetPasswordRequest, meta RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "forget password")
	}
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return appErrors.Internal(err, "failed to fetch user")
	}
	if !user.Active {
		return nil
	}

	value, err := randomToken()
	if err != nil {
		return appErrors.Internal(err, "failed to create reset token")
	}
	now := time.Now().UTC()
	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: now.Add(s.config.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return appErrors.Internal(err, "failed to persist reset token")
	}
	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, user.Email, user.FullName, value, s.config.ResetTokenTTL); err != nil {
			return appErrors.Internal(err, "failed to send reset email")
		}
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:     user.ID,
		Action:     models.AuditActionPasswordReset,
		Resource:   "auth",
		ResourceID: user.ID,
		Payload:    map[string]string{"status": "requested"},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest, meta RequestMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "reset password")
	}
	invalid := appErrors.Clone(appErrors.ErrValidation, "invalid or expired reset token")

	now := time.Now().UTC()
	token, err := s.resets.FindActive(ctx, trimmed(req.Token), now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid
		}
		return appErrors.Internal(err, "failed to load reset token")
	}
	if err := s.resets.MarkUsed(ctx, token.ID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid
		}
		return appErrors.Internal(err, "failed to consume reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, string(hash), now); err != nil {
		return writeError(err, "user", "update")
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:     token.UserID,
		Action:     models.AuditActionPasswordReset,
		Resource:   "auth",
		ResourceID: token.UserID,
		Payload:    map[string]string{"status": "completed"},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	if user.UniversityID != nil {
		claims.UniversityID = *user.UniversityID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         user.Role,
		UniversityID: user.UniversityID,
	}
}
