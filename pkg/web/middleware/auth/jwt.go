// Package auth provides JWT authentication middleware for the web router.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fluxorio/todo-service/pkg/web"
)

// ClaimsKey is the request-scoped key under which validated claims are stored
const ClaimsKey = "user"

// JWTConfig configures JWT authentication
type JWTConfig struct {
	// SecretKey is the HMAC secret for verifying tokens
	SecretKey string

	// ValidMethods is the list of accepted signing algorithms.
	// Default: ["HS256"]. Set explicitly to avoid alg-confusion attacks.
	ValidMethods []string

	// Issuer requires a matching `iss` claim when set
	Issuer string

	// Leeway allows small clock skew for exp/nbf/iat validation
	Leeway time.Duration

	// AuthScheme is the Authorization scheme (default: "Bearer")
	AuthScheme string

	// SkipPaths is a list of path prefixes exempt from authentication
	SkipPaths []string

	// OnError is called when authentication fails (default: JSON 401)
	OnError func(ctx *web.RequestContext, err error) error
}

// DefaultJWTConfig returns a default JWT configuration
func DefaultJWTConfig(secretKey string) JWTConfig {
	return JWTConfig{
		SecretKey:    secretKey,
		AuthScheme:   "Bearer",
		ValidMethods: []string{"HS256"},
	}
}

// JWT validates bearer tokens and stores the claims on the request context
func JWT(config JWTConfig) web.Middleware {
	if config.SecretKey == "" {
		panic("JWT: SecretKey must be provided")
	}

	validMethods := config.ValidMethods
	if len(validMethods) == 0 {
		validMethods = []string{"HS256"}
	}
	authScheme := config.AuthScheme
	if authScheme == "" {
		authScheme = "Bearer"
	}
	onError := config.OnError
	if onError == nil {
		onError = func(ctx *web.RequestContext, err error) error {
			return ctx.Error(http.StatusUnauthorized, "unauthorized", "invalid or missing token")
		}
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(config.SecretKey), nil
	}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods(validMethods)}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}
	if config.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(config.Leeway))
	}

	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			path := ctx.Request.URL.Path
			for _, skip := range config.SkipPaths {
				if path == skip || strings.HasPrefix(path, skip) {
					return next(ctx)
				}
			}

			header := ctx.Request.Header.Get("Authorization")
			if header == "" {
				return onError(ctx, fmt.Errorf("missing authorization header"))
			}
			prefix := authScheme + " "
			if !strings.HasPrefix(header, prefix) {
				return onError(ctx, fmt.Errorf("invalid authorization scheme"))
			}
			tokenStr := strings.TrimPrefix(header, prefix)

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc, parserOpts...)
			if err != nil || !token.Valid {
				return onError(ctx, fmt.Errorf("token validation failed: %w", err))
			}

			ctx.Set(ClaimsKey, claims)
			return next(ctx)
		}
	}
}

// GetClaims returns the validated claims stored by the JWT middleware
func GetClaims(ctx *web.RequestContext) (jwt.MapClaims, bool) {
	v, ok := ctx.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(jwt.MapClaims)
	return claims, ok
}

// GetSubject extracts the `sub` claim set by the token issuer
func GetSubject(ctx *web.RequestContext) (string, error) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return "", fmt.Errorf("no claims in request context")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("no subject claim")
	}
	return sub, nil
}
