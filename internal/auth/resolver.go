// Package auth resolves inbound bearer credentials to an authenticated
// principal. Two verification paths are tried in strict order: the
// hosted identity service (Supabase GoTrue) first, then a locally-signed
// HS256 token. The first successful path wins; role and status are only
// ever trusted from the users table row, never from token claims.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("auth")

// Credential carriers, tried in order. First non-empty wins.
const (
	tokenHeader  = "X-Access-Token"
	hostedCookie = "sb-access-token"
	localCookie  = "edgeadmin_token"
)

// Reserved payload of the built-in local admin token.
const (
	localAdminSubject = "admin"
	localAdminRole    = "admin"
)

// UserStore fetches a user row by id. Returns (nil, nil) when the row
// does not exist.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// TokenIntrospector verifies a hosted-identity token and returns the
// stable subject id and email it carries.
type TokenIntrospector interface {
	IntrospectToken(ctx context.Context, token string) (subject, email string, err error)
}

// OutcomeRecorder counts resolutions per verification path; satisfied
// by the metrics registry. Nil disables recording.
type OutcomeRecorder interface {
	IncrAuthOutcome(path, outcome string)
}

// Resolver is the hybrid credential resolver.
type Resolver struct {
	store             UserStore
	introspector      TokenIntrospector
	jwtSecret         []byte
	localAdminEnabled bool
	logger            *zap.Logger
	rec               OutcomeRecorder
}

// NewResolver creates a resolver. localAdminEnabled gates the synthetic
// built-in admin escape hatch.
func NewResolver(store UserStore, introspector TokenIntrospector, jwtSecret string, localAdminEnabled bool, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:             store,
		introspector:      introspector,
		jwtSecret:         []byte(jwtSecret),
		localAdminEnabled: localAdminEnabled,
		logger:            logger,
	}
}

// SetMetrics attaches the outcome recorder.
func (r *Resolver) SetMetrics(rec OutcomeRecorder) {
	r.rec = rec
}

func (r *Resolver) record(path, outcome string) {
	if r.rec != nil {
		r.rec.IncrAuthOutcome(path, outcome)
	}
}

// ExtractToken pulls the bearer credential from the request:
// Authorization header, then the access-token header, then cookies.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if h := r.Header.Get(tokenHeader); h != "" {
		return h
	}
	for _, name := range []string{hostedCookie, localCookie} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// pathStatus tags the outcome of one verification path, so "this path
// doesn't apply" stays distinguishable from "this path errored".
type pathStatus int

const (
	pathNotApplicable pathStatus = iota
	pathSuccess
	pathFailure
)

type pathOutcome struct {
	status    pathStatus
	principal *domain.Principal
	err       error
}

// Resolve authenticates the credential without any role requirement.
// This is the plain user-auth variant: any resolved principal passes.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Principal, error) {
	return r.resolve(ctx, token, "")
}

// ResolveRole authenticates the credential and enforces a minimum role:
// RoleAdmin accepts admin and superadmin, RoleSuperAdmin accepts only
// superadmin. Comparison is case-insensitive.
func (r *Resolver) ResolveRole(ctx context.Context, token, requiredRole string) (*domain.Principal, error) {
	return r.resolve(ctx, token, requiredRole)
}

func (r *Resolver) resolve(ctx context.Context, token, requiredRole string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "auth.Resolve")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthorized{Message: "authentication token required"}
	}

	// Hosted path first. A definitive failure there (token verified but
	// no matching user row) is terminal — no silent fallback.
	path := "hosted"
	outcome := r.tryHosted(ctx, token)
	if outcome.status == pathNotApplicable {
		path = "local"
		outcome = r.tryLocal(ctx, token)
	}
	if outcome.principal != nil && outcome.principal.Synthetic {
		path = "synthetic"
	}

	switch outcome.status {
	case pathSuccess:
		r.record(path, "success")
		span.SetAttributes(attribute.String("auth.role", outcome.principal.Role))
		return r.checkRole(outcome.principal, requiredRole)
	case pathFailure:
		r.record(path, "failure")
		return nil, outcome.err
	default:
		r.record(path, "failure")
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
}

// tryHosted delegates verification to the hosted identity service, then
// loads the full user row for the subject it returns.
func (r *Resolver) tryHosted(ctx context.Context, token string) pathOutcome {
	subject, _, err := r.introspector.IntrospectToken(ctx, token)
	if err != nil {
		// Undecodable by this path (or the service is unreachable):
		// the local path gets its turn.
		return pathOutcome{status: pathNotApplicable}
	}

	user, err := r.store.GetUserByID(ctx, subject)
	if err != nil {
		r.logger.Error("auth: user lookup failed after hosted verify",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return pathOutcome{status: pathFailure, err: &domain.ErrUnauthorized{Message: "user not found"}}
	}
	if user == nil {
		return pathOutcome{status: pathFailure, err: &domain.ErrUnauthorized{Message: "user not found"}}
	}

	return pathOutcome{status: pathSuccess, principal: principalFromUser(user)}
}

// localClaims is the payload of locally-signed tokens.
type localClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// tryLocal verifies the shared-secret signature and either short-circuits
// to the synthetic built-in admin or resolves the subject to a user row.
func (r *Resolver) tryLocal(ctx context.Context, token string) pathOutcome {
	claims := &localClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return pathOutcome{status: pathNotApplicable}
	}

	subject := claims.Subject

	if subject == localAdminSubject && strings.EqualFold(claims.Role, localAdminRole) {
		if !r.localAdminEnabled {
			r.logger.Warn("auth: built-in admin token presented but local admin is disabled")
			return pathOutcome{status: pathFailure, err: &domain.ErrUnauthorized{Message: "invalid or expired token"}}
		}
		// Break-glass access without a backing users row. Always audited.
		r.logger.Warn("auth: built-in local admin authenticated, bypassing user store")
		return pathOutcome{status: pathSuccess, principal: &domain.Principal{
			ID:        localAdminSubject,
			Email:     "admin@localhost",
			Name:      "Built-in Administrator",
			Role:      domain.RoleSuperAdmin,
			Synthetic: true,
		}}
	}

	if subject == "" {
		return pathOutcome{status: pathFailure, err: &domain.ErrUnauthorized{Message: "invalid or expired token"}}
	}

	user, err := r.store.GetUserByID(ctx, subject)
	if err != nil {
		r.logger.Error("auth: user lookup failed after local verify",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return pathOutcome{status: pathFailure, err: &domain.ErrUnauthorized{Message: "invalid or expired token"}}
	}
	if user == nil {
		return pathOutcome{status: pathFailure, err: &domain.ErrUnauthorized{Message: "invalid or expired token"}}
	}

	return pathOutcome{status: pathSuccess, principal: principalFromUser(user)}
}

func (r *Resolver) checkRole(p *domain.Principal, requiredRole string) (*domain.Principal, error) {
	role := strings.ToLower(p.Role)
	switch strings.ToLower(requiredRole) {
	case "":
		return p, nil
	case domain.RoleSuperAdmin:
		if role == domain.RoleSuperAdmin {
			return p, nil
		}
	case domain.RoleAdmin:
		if role == domain.RoleAdmin || role == domain.RoleSuperAdmin {
			return p, nil
		}
	}
	return nil, &domain.ErrForbidden{RequiredRole: requiredRole}
}

func principalFromUser(u *domain.User) *domain.Principal {
	return &domain.Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  strings.ToLower(u.Role),
	}
}
