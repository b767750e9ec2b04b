package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type mockAuthRepo struct {
	learnerByEmail         *models.Learner
	learnerByID            *models.Learner
	created                *models.Learner
	findByEmailErr         error
	findByIDErr            error
	refreshTokens          map[string]*models.RefreshToken
	refreshTokenErr        error
	createRefreshErr       error
	revokeRefreshErr       error
	revokeLearnerTokensErr error
	updatePasswordErr      error
	auditLogs              []*models.AuditLog
	lastLoginUpdated       bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Learner, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.learnerByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.learnerByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.learnerByID != nil {
		return m.learnerByID, nil
	}
	if m.learnerByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.learnerByEmail, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, learner *models.Learner) error {
	m.created = learner
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	if m.learnerByEmail != nil && m.learnerByEmail.ID == id {
		m.learnerByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeLearnerRefreshTokens(ctx context.Context, learnerID string) error {
	return m.revokeLearnerTokensErr
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.refreshTokenErr != nil {
		return nil, m.refreshTokenErr
	}
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	if m.revokeRefreshErr != nil {
		return m.revokeRefreshErr
	}
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func TestAuthServiceRegisterStartsOnFreeTier(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour * 24,
	})

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		FullName: "New Learner",
		Password: "password",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.TierFree, repo.created.SubscriptionTier)
	assert.Equal(t, 1, repo.created.ApprovedPillar)
	assert.Equal(t, models.RoleLearner, repo.created.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.TierFree, res.User.SubscriptionTier)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{learnerByEmail: &models.Learner{ID: "l1", Email: "taken@example.com"}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "taken@example.com", FullName: "Dup", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{learnerByEmail: &models.Learner{ID: "123", Email: "user@example.com", PasswordHash: string(password), Active: true, Role: models.RoleLearner, SubscriptionTier: models.TierFree}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour * 24,
	})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{learnerByEmail: &models.Learner{ID: "123", Email: "user@example.com", PasswordHash: string(password), Active: false}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshToken(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: make(map[string]*models.RefreshToken)}
	learner := &models.Learner{ID: "l1", Email: "user@example.com", PasswordHash: "hash", Active: true, Role: models.RoleLearner}
	repo.learnerByEmail = learner
	repo.learnerByID = learner
	token := &models.RefreshToken{ID: "rt1", LearnerID: learner.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	repo.refreshTokens[token.Token] = token

	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{learnerByEmail: &models.Learner{ID: "l1", PasswordHash: string(oldHash), Active: true}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})

	err := svc.ChangePassword(context.Background(), "l1", models.ChangePasswordRequest{OldPassword: "old", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), repo.learnerByEmail.PasswordHash)
}

func TestValidateToken(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})
	learner := &models.Learner{ID: "l1", Email: "user@example.com", Role: models.RoleAdmin}
	token, _, err := svc.generateAccessToken(learner)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, learner.ID, claims.UserID)
}
