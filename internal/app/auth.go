package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type identityClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// AuthService registers users and issues and resolves HS256 bearer tokens.
type AuthService struct {
	users    core.UserStore
	secret   []byte
	expiry   time.Duration
	hashCost int
}

func NewAuthService(users core.UserStore, secret string, expiry time.Duration, hashCost int) (*AuthService, error) {
	if users == nil {
		panic("UserStore cannot be nil for AuthService")
	}
	if secret == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, secret: []byte(secret), expiry: expiry, hashCost: hashCost}, nil
}

func (s *AuthService) Register(ctx context.Context, username, displayName, password string) (*domain.User, error) {
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", core.ErrBadRequest, minPasswordLen)
	}
	user, err := domain.NewUser(username, displayName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBadRequest, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q is taken", core.ErrConflict, user.Username)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrDurableWriteFailed, err)
	}
	log.Info().Str("module", "app.auth").Str("user", string(user.ID)).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login checks credentials and returns a fresh token. Unknown users and bad
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Warn().Str("module", "app.auth").Str("username", username).Msg("login failed: unknown user")
			return "", nil, fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("%w: %w", core.ErrDurableWriteFailed, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		log.Warn().Str("module", "app.auth").Str("username", username).Msg("login failed: bad password")
		return "", nil, fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	}
	token, err := s.Issue(user.Identity())
	if err != nil {
		return "", nil, err
	}
	log.Info().Str("module", "app.auth").Str("user", string(user.ID)).Msg("user logged in")
	return token, user, nil
}

// Issue signs a token for id.
func (s *AuthService) Issue(id domain.Identity) (string, error) {
	now := time.Now()
	claims := identityClaims{
		Name: id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ResolveIdentity validates token and returns the identity it carries.
func (s *AuthService) ResolveIdentity(_ context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing token", core.ErrUnauthorized)
	}
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no subject", core.ErrUnauthorized)
	}
	return domain.Identity{UserID: domain.UserID(claims.Subject), DisplayName: claims.Name}, nil
}

// Me loads the full user behind id.
func (s *AuthService) Me(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", core.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrDurableWriteFailed, err)
	}
	return user, nil
}
