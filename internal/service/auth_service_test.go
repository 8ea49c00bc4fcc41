package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"quill/internal/cache"
	"quill/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
	listFn          func(ctx context.Context, limit, offset int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func newTestAuthService(repo *userRepoStub) *AuthService {
	return NewAuthService(repo, cache.NewSessions(nil), "test-secret-for-auth-service-tests", 16)
}

func TestEmailHash(t *testing.T) {
	t.Parallel()

	// sha256("alice@example.com")
	assert.Equal(t,
		"ff8d9819fc0e12bf0d24892e45987e249a28dce836a85cad60e28eaaa8c6d976",
		EmailHash("alice@example.com"))

	// Case-insensitive: Gravatar keys are computed on the lower-cased address.
	assert.Equal(t, EmailHash("alice@example.com"), EmailHash("ALICE@Example.COM"))
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{
			getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, nil
			},
			createFn: func(_ context.Context, user *models.User) error {
				user.ID = 7
				return nil
			},
		}
		svc := newTestAuthService(repo)

		user, token, err := svc.Register(context.Background(), RegisterInput{
			Email:    "alice@example.com",
			Password: "password123",
			Username: "alice",
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, uint(7), user.ID)
		assert.Equal(t, EmailHash("alice@example.com"), user.EmailHash)
		assert.True(t, VerifyPassword(user.Password, "password123"))
		assert.NotEmpty(t, token)
	})

	t.Run("duplicate maps to conflict", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{
			getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, nil
			},
			createFn: func(_ context.Context, _ *models.User) error {
				return gorm.ErrDuplicatedKey
			},
		}
		svc := newTestAuthService(repo)

		_, _, err := svc.Register(context.Background(), RegisterInput{
			Email:    "alice@example.com",
			Password: "password123",
			Username: "alice",
		})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("taken username conflicts before hashing", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{
			getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
				return &models.User{ID: 2, Username: username}, nil
			},
			createFn: func(_ context.Context, _ *models.User) error {
				t.Fatal("create must not be called for a taken username")
				return nil
			},
		}
		svc := newTestAuthService(repo)

		_, _, err := svc.Register(context.Background(), RegisterInput{
			Email:    "other@example.com",
			Password: "password123",
			Username: "alice",
		})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			input RegisterInput
		}{
			{"bad email", RegisterInput{Email: "not-an-email", Password: "password123", Username: "alice"}},
			{"short password", RegisterInput{Email: "a@example.com", Password: "short", Username: "alice"}},
			{"empty username", RegisterInput{Email: "a@example.com", Password: "password123", Username: ""}},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				repo := &userRepoStub{
					createFn: func(_ context.Context, _ *models.User) error {
						t.Fatal("create must not be called for invalid input")
						return nil
					},
				}
				svc := newTestAuthService(repo)

				_, _, err := svc.Register(context.Background(), tt.input)
				require.Error(t, err)

				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, models.CodeValidationError, appErr.Code)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("password123", 16)
	require.NoError(t, err)

	existing := &models.User{ID: 3, Email: "alice@example.com", Password: hashed, Username: "alice"}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return existing, nil
			},
		}
		svc := newTestAuthService(repo)

		user, token, err := svc.Login(context.Background(), LoginInput{
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, uint(3), user.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("unknown email pays the same hashing cost", func(t *testing.T) {
		t.Parallel()

		// The dummy hash must carry the production parameters so the
		// derivation on the nil-user branch costs the same as a real verify,
		// and must never actually match.
		parts := strings.Split(dummyHash, "$")
		require.Len(t, parts, 6)
		assert.Equal(t, "scrypt", parts[0])
		assert.Equal(t, strconv.Itoa(scryptN), parts[1])
		assert.Equal(t, strconv.Itoa(scryptR), parts[2])
		assert.Equal(t, strconv.Itoa(scryptP), parts[3])
		assert.Len(t, parts[5], scryptKeyLen*2)
		assert.False(t, VerifyPassword(dummyHash, ""))
		assert.False(t, VerifyPassword(dummyHash, "password123"))
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()

		unknownRepo := &userRepoStub{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, nil
			},
		}
		knownRepo := &userRepoStub{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return existing, nil
			},
		}

		_, _, errUnknown := newTestAuthService(unknownRepo).Login(context.Background(),
			LoginInput{Email: "nobody@example.com", Password: "password123"})
		_, _, errWrongPw := newTestAuthService(knownRepo).Login(context.Background(),
			LoginInput{Email: "alice@example.com", Password: "wrong-password"})

		require.Error(t, errUnknown)
		require.Error(t, errWrongPw)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())

		var appErr *models.AppError
		require.ErrorAs(t, errUnknown, &appErr)
		assert.Equal(t, models.CodeInvalidCredentials, appErr.Code)
	})
}

func TestIssueTokenClaims(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(&userRepoStub{})

	tokenString, err := svc.IssueToken(42)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return []byte("test-secret-for-auth-service-tests"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, TokenIssuer, claims["iss"])
	assert.Equal(t, TokenAudience, claims["aud"])
	assert.NotEmpty(t, claims["jti"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	expected := time.Now().Add(7 * 24 * time.Hour).Unix()
	assert.InDelta(t, expected, int64(exp), 60)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(&userRepoStub{}, cache.NewSessions(nil), "", 16)
	_, err := svc.IssueToken(1)
	assert.Error(t, err)
}
