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

	"github.com/campuskit/course-reg-api/internal/models"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
)

type mockUserRepo struct {
	users         map[string]*models.User
	created       []*models.User
	refreshTokens []*models.RefreshToken
	revokedFor    []string
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.users[user.Username] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens = append(m.refreshTokens, token)
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	for _, rt := range m.refreshTokens {
		if rt.Token == token {
			return rt, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedFor = append(m.revokedFor, userID)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "test",
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginRedirectTargets(t *testing.T) {
	cases := []struct {
		userType models.UserType
		want     string
	}{
		{models.TypeStudent, "/student/jdoe"},
		{models.TypeTeacher, "/teacher/jdoe"},
		{models.TypeAdmin, "/admin"},
	}

	for _, tc := range cases {
		repo := newMockUserRepo(&models.User{ID: "u1", Username: "jdoe", PasswordHash: hashOf(t, "password"), UserType: tc.userType, PersonName: "John Doe"})
		svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

		res, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "password"})
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.RedirectTo)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Len(t, repo.refreshTokens, 1)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Username: "jdoe", PasswordHash: hashOf(t, "password"), UserType: models.TypeStudent})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", appErrors.FromError(err).Message)
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", appErrors.FromError(err).Message)
}

func TestCreateAccount(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	info, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{
		Username:   "jdoe",
		PersonName: "John Doe",
		Password:   "password",
		UserType:   "student",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TypeStudent, info.UserType)
	require.Len(t, repo.created, 1)
	assert.NotEqual(t, "password", repo.created[0].PasswordHash)
}

func TestCreateAccountDuplicateUsername(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Username: "jdoe", UserType: models.TypeStudent})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{
		Username:   "jdoe",
		PersonName: "John Doe",
		Password:   "password",
		UserType:   "STUDENT",
	})
	require.Error(t, err)
	assert.Equal(t, "Account already exists under this Username", appErrors.FromError(err).Message)
	assert.Empty(t, repo.created)
}

func TestCreateAccountInvalidUserType(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{
		Username:   "jdoe",
		PersonName: "John Doe",
		Password:   "password",
		UserType:   "WIZARD",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid user type selected", appErrors.FromError(err).Message)
	assert.Empty(t, repo.created)
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Username: "jdoe", UserType: models.TypeStudent, PersonName: "John Doe"})
	repo.refreshTokens = append(repo.refreshTokens, &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.True(t, repo.refreshTokens[0].Revoked)
	require.Len(t, repo.refreshTokens, 2)
}

func TestRefreshTokenRejectsRevoked(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Username: "jdoe", UserType: models.TypeStudent})
	repo.refreshTokens = append(repo.refreshTokens, &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Revoked:   true,
	})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestRefreshTokenRejectsExpired(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Username: "jdoe", UserType: models.TypeStudent})
	repo.refreshTokens = append(repo.refreshTokens, &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	})
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestRefreshTokenUnknown(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "ghost"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestLogoutRevokesSessions(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	require.NoError(t, svc.Logout(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, repo.revokedFor)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	user := &models.User{ID: "u1", Username: "jdoe", UserType: models.TypeTeacher, PersonName: "John Doe"}
	token, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.TypeTeacher, claims.UserType)
	assert.Equal(t, "John Doe", claims.PersonName)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "other",
		AccessTokenExpiry: time.Hour,
	})
	token, err := other.generateAccessToken(&models.User{ID: "u1", Username: "jdoe", UserType: models.TypeStudent})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
