package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type mockUserRepo struct {
	users            map[string]*models.User
	lastLoginUpdated bool
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

type mockResetRepo struct {
	tokens map[string]*models.PasswordResetToken
}

func (m *mockResetRepo) Create(ctx context.Context, token *models.PasswordResetToken) error {
	token.ID = fmt.Sprintf("reset-%d", len(m.tokens)+1)
	m.tokens[token.Token] = token
	return nil
}

func (m *mockResetRepo) FindActive(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error) {
	t, ok := m.tokens[token]
	if !ok || t.UsedAt != nil || now.After(t.ExpiresAt) {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockResetRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	for _, t := range m.tokens {
		if t.ID == id && t.UsedAt == nil {
			t.UsedAt = &usedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

type recordingNotifier struct {
	resets   map[string]string
	welcomes []string
	err      error
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, to, name, token string, validity time.Duration) error {
	if n.err != nil {
		return n.err
	}
	n.resets[to] = token
	return nil
}

func (n *recordingNotifier) SendWelcome(ctx context.Context, to, name, role string) error {
	n.welcomes = append(n.welcomes, to)
	return nil
}

type mockAuditRepo struct {
	logs []*models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.logs = append(m.logs, entry)
	return nil
}

type authFixture struct {
	svc      *AuthService
	users    *mockUserRepo
	resets   *mockResetRepo
	notifier *recordingNotifier
	audit    *mockAuditRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &mockUserRepo{users: map[string]*models.User{
		"user-0": {ID: "user-0", Email: "coordinator@nu.edu.pk", PasswordHash: string(hash), FullName: "Sana Coordinator", Role: models.RoleCoordinator, Active: true},
	}}
	resets := &mockResetRepo{tokens: map[string]*models.PasswordResetToken{}}
	notifier := &recordingNotifier{resets: map[string]string{}}
	auditRepo := &mockAuditRepo{}
	svc := NewAuthService(users, resets, universitiesFixture(), notifier, NewAuditService(auditRepo, zap.NewNop()), nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "internship-portal",
		ResetTokenTTL:     time.Hour,
	})
	return &authFixture{svc: svc, users: users, resets: resets, notifier: notifier, audit: auditRepo}
}

func TestAuthServiceRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	info, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:        "Focal@NU.edu.pk",
		Password:     "longpassword",
		FullName:     "Focal Person",
		Role:         string(models.RoleFocalPerson),
		UniversityID: "U1",
	}, RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "focal@nu.edu.pk", info.Email)
	require.NotNil(t, info.UniversityID)
	assert.Equal(t, "U1", *info.UniversityID)
	assert.Equal(t, []string{"focal@nu.edu.pk"}, f.notifier.welcomes)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionRegister, f.audit.logs[0].Action)

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Email: "focal@nu.edu.pk", Password: "longpassword", FullName: "Again", Role: "STUDENT"}, RequestMeta{})
	assert.Equal(t, "email already used", appErrors.FromError(err).Message)

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Email: "x@nu.edu.pk", Password: "longpassword", FullName: "X", Role: "STUDENT", UniversityID: "U404"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Email: "y@nu.edu.pk", Password: "short", FullName: "Y", Role: "ROOT"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceLoginAndValidateToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, dto.LoginRequest{Email: "coordinator@nu.edu.pk", Password: "password123"}, RequestMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.True(t, f.users.lastLoginUpdated)

	claims, err := f.svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-0", claims.UserID)
	assert.Equal(t, models.RoleCoordinator, claims.Role)

	_, err = f.svc.ValidateToken(resp.AccessToken + "x")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, dto.LoginRequest{Email: "coordinator@nu.edu.pk", Password: "wrong"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "nobody@nu.edu.pk", Password: "password123"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	f.users.users["user-0"].Active = false
	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "coordinator@nu.edu.pk", Password: "password123"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthServicePasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgetPassword(ctx, dto.ForgetPasswordRequest{Email: "unknown@nu.edu.pk"}, RequestMeta{}))
	assert.Empty(t, f.notifier.resets)

	require.NoError(t, f.svc.ForgetPassword(ctx, dto.ForgetPasswordRequest{Email: "coordinator@nu.edu.pk"}, RequestMeta{}))
	token := f.notifier.resets["coordinator@nu.edu.pk"]
	require.NotEmpty(t, token)

	require.NoError(t, f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, NewPassword: "brandnewpass"}, RequestMeta{}))
	_, err := f.svc.Login(ctx, dto.LoginRequest{Email: "coordinator@nu.edu.pk", Password: "brandnewpass"}, RequestMeta{})
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, NewPassword: "anotherpass"}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "invalid or expired reset token", appErrors.FromError(err).Message)
}

func TestAuthServiceForgetPasswordMailFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.notifier.err = errors.New("smtp down")

	err := f.svc.ForgetPassword(context.Background(), dto.ForgetPasswordRequest{Email: "coordinator@nu.edu.pk"}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
