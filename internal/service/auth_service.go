package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4" // Import JWT library
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt" // Import bcrypt

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/idgen"
	"videosplus/storefront/internal/logger"
	"videosplus/storefront/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrSessionInactive      = errors.New("session is no longer active")
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles login sessions backed by the session collection.
type AuthService interface {
	// Login checks the credentials, records a session and returns its token.
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// Logout deactivates the session holding token.
	Logout(ctx context.Context, token string) error
	// Authenticate validates token and requires its session to still be active.
	Authenticate(ctx context.Context, token string) (*Claims, error)
	HashPassword(password string) (string, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	jwtSecret     string
	jwtExpiration time.Duration
	log           logrus.FieldLogger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtSecret string, jwtExpiration time.Duration, log logrus.FieldLogger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1 // Default to 1 hour if not set properly
	}
	return &authService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           logger.Component(log, "auth"),
	}
}

// Login handles user authentication, JWT generation and session creation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed // User not found maps to auth failure
		}
		return "", nil, err
	}

	if !checkPassword(user.Password, password) {
		s.log.WithField("user_id", user.ID).Info("login rejected: wrong password")
		return "", nil, ErrAuthenticationFailed
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtExpiration)
	token, err := s.generateJWT(user, now, expiresAt)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	_, err = s.sessionRepo.Create(ctx, domain.Session{
		Token:     token,
		UserID:    user.ID,
		IsActive:  true,
		ExpiresAt: idgen.Timestamp(expiresAt),
	})
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")
	user.Password = "" // never hand the hash back
	return token, user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionInactive
		}
		return err
	}
	inactive := false
	if _, err := s.sessionRepo.Update(ctx, session.ID, domain.SessionPatch{IsActive: &inactive}); err != nil {
		return err
	}
	s.log.WithField("user_id", session.UserID).Info("user logged out")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	if _, err := s.sessionRepo.GetByToken(ctx, tokenString); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionInactive
		}
		return nil, err
	}
	return claims, nil
}

func (s *authService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(hashed), nil
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(), // keeps tokens of one user distinct within a second
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    "videosplus",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// checkPassword accepts bcrypt hashes and the hex SHA-256 digests stored by earlier
// versions of the storefront.
func checkPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	sum := sha256.Sum256([]byte(password))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(digest)) == 1
}
