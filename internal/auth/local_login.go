package auth

import (
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LocalAdmin issues the locally-signed bootstrap admin token. It exists
// so operators can reach the admin console before any user row exists
// in the hosted backend.
type LocalAdmin struct {
	resolver     *Resolver
	username     string
	passwordHash string // bcrypt
	tokenTTL     time.Duration
}

// NewLocalAdmin wires the bootstrap login against the resolver's secret.
func NewLocalAdmin(resolver *Resolver, username, passwordHash string, tokenTTL time.Duration) *LocalAdmin {
	return &LocalAdmin{
		resolver:     resolver,
		username:     username,
		passwordHash: passwordHash,
		tokenTTL:     tokenTTL,
	}
}

// Login checks the bootstrap credentials and returns a signed token
// carrying the reserved admin payload.
func (l *LocalAdmin) Login(req *domain.LocalLoginRequest) (*domain.LocalLoginResponse, error) {
	if !l.resolver.localAdminEnabled {
		return nil, &domain.ErrUnauthorized{Message: "local admin login is disabled"}
	}
	if req.Username != l.username || l.passwordHash == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(l.passwordHash), []byte(req.Password)); err != nil {
		l.resolver.logger.Warn("auth: failed local admin login attempt",
			zap.String("username", req.Username),
		)
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	now := time.Now()
	claims := localClaims{
		Role: localAdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   localAdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.tokenTTL)),
			Issuer:    "edgeadmin",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.resolver.jwtSecret)
	if err != nil {
		return nil, err
	}

	l.resolver.logger.Warn("auth: local admin token issued")

	return &domain.LocalLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(l.tokenTTL.Seconds()),
	}, nil
}
