package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JWT claim values shared with the auth middleware.
const (
	TokenIssuer   = "quill-api"
	TokenAudience = "quill-client"
	tokenLifetime = time.Hour * 24 * 7
)

// AuthService implements registration, credential verification, and session
// token lifecycle.
type AuthService struct {
	userRepo  repository.UserRepository
	sessions  *cache.Sessions
	jwtSecret string
	saltLen   int
}

// RegisterInput holds the registration form fields.
type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// LoginInput holds the login form fields.
type LoginInput struct {
	Email    string
	Password string
}

// NewAuthService creates an AuthService.
func NewAuthService(userRepo repository.UserRepository, sessions *cache.Sessions, jwtSecret string, saltLen int) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		saltLen:   saltLen,
	}
}

// EmailHash returns the sha256 hex digest of the lower-cased email, used as
// the Gravatar lookup key.
func EmailHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// Register validates the input, creates the user, and returns the user with
// a fresh session token. A uniqueness violation on email, email hash, or
// username yields Conflict with no partial row; the insert is a single
// statement so the store's own atomicity covers it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	// Precheck for a friendlier message; the unique constraint below remains
	// the real guard against races.
	taken, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	if taken != nil {
		return nil, "", models.NewConflictError("This username is already taken")
	}

	hashed, err := HashPassword(in.Password, s.saltLen)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		EmailHash: EmailHash(in.Email),
		Password:  hashed,
		Username:  in.Username,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", models.NewConflictError("A user with this email or username already exists")
		}
		return nil, "", models.NewInternalError(err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// dummyHash carries the production scrypt parameters so the login path pays
// the same derivation cost when no user matches the email.
const dummyHash = "scrypt$32768$8$1$00000000000000000000000000000000$0000000000000000000000000000000000000000000000000000000000000000"

// Login verifies the credentials and returns the user with a fresh session
// token. Unknown email and wrong password are indistinguishable to the
// caller, in both response and timing.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	if user == nil {
		VerifyPassword(dummyHash, in.Password)
		return nil, "", models.NewInvalidCredentialsError()
	}
	if !VerifyPassword(user.Password, in.Password) {
		return nil, "", models.NewInvalidCredentialsError()
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// Logout revokes the session identified by jti until the token's expiry.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.sessions.Revoke(ctx, jti, time.Until(expiresAt))
}

// IssueToken creates a signed session token for the given user ID, using
// the standard claim set: sub, iss, aud, exp, iat, nbf, jti.
func (s *AuthService) IssueToken(userID uint) (string, error) {
	if s.jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": now.Add(tokenLifetime).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateJTI creates a unique token ID so individual sessions can be revoked.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
