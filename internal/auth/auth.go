// Package auth issues and verifies the bearer tokens that gate admin routes.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	// CookieName is read when no Authorization header is present.
	CookieName = "adminToken"

	DefaultTTL = 24 * time.Hour
)

// Error codes returned to clients.
const (
	CodeTokenRequired = "AUTH_TOKEN_REQUIRED"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeTokenExpired  = "TOKEN_EXPIRED"
	CodeAdminRequired = "ADMIN_REQUIRED"
)

var ErrSecretRequired = errors.New("auth: signing secret is required")

// Error is an authentication or authorization rejection.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
	}
	return "auth: " + e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an auth rejection.
func IsAuthError(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr)
}

func tokenRequired() *Error {
	return &Error{Code: CodeTokenRequired, Message: "authentication token is required", Status: http.StatusUnauthorized}
}

func invalidToken(err error) *Error {
	return &Error{Code: CodeInvalidToken, Message: "token is invalid", Status: http.StatusUnauthorized, Err: err}
}

func tokenExpired(err error) *Error {
	return &Error{Code: CodeTokenExpired, Message: "token has expired", Status: http.StatusUnauthorized, Err: err}
}

func adminRequired() *Error {
	return &Error{Code: CodeAdminRequired, Message: "admin role is required", Status: http.StatusForbidden}
}

// Claims carried by issued tokens.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Subject identifies the holder of a token.
type Subject struct {
	ID    string
	Email string
	Role  string
}

// Authenticator signs and verifies HS256 tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithIssuer sets the iss claim written and required.
func WithIssuer(issuer string) Option {
	return func(a *Authenticator) {
		a.issuer = strings.TrimSpace(issuer)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// New builds an Authenticator for secret.
func New(secret string, opts ...Option) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	a := &Authenticator{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Issue signs a token for subject.
func (a *Authenticator) Issue(subject Subject) (string, error) {
	now := a.now()
	claims := Claims{
		ID:    subject.ID,
		Email: subject.Email,
		Role:  subject.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates token.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, tokenRequired()
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, tokenExpired(err)
	case err != nil:
		return nil, invalidToken(err)
	}
	return claims, nil
}

// Authenticate verifies the bearer token carried by r.
func (a *Authenticator) Authenticate(r *http.Request) (*Claims, error) {
	return a.Verify(TokenFromRequest(r))
}

// AuthorizeAdmin verifies the request token and requires the admin role.
func (a *Authenticator) AuthorizeAdmin(r *http.Request) (*Claims, error) {
	claims, err := a.Authenticate(r)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return claims, adminRequired()
	}
	return claims, nil
}

// RequireAdmin rejects requests without a valid admin token before next runs.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.AuthorizeAdmin(r)
		if err != nil {
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// TokenFromRequest reads the Authorization bearer token, falling back to the admin cookie.
func TokenFromRequest(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

type claimsKey struct{}

// ContextWithClaims stores verified claims on ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError renders an auth rejection as JSON. Other errors become 401 INVALID_TOKEN.
func WriteError(w http.ResponseWriter, err error) {
	var authErr *Error
	if !errors.As(err, &authErr) {
		authErr = invalidToken(err)
	}
	w.Header().Set("Content-Type", "application/json")
	if authErr.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="blog"`)
	}
	w.WriteHeader(authErr.Status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: authErr.Code, Message: authErr.Message})
}
