// internal/middleware/jwt.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"groove-press/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token expiration time - 24 hours
const tokenExpiration = 24 * time.Hour

// jwtSecret is set once at startup from configuration.
var jwtSecret []byte

// InitJWT sets the signing secret. Must be called before any token is
// generated or validated.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// Claims represents the JWT claims for our application. The role is
// embedded so handlers can authorize admin routes without a user lookup;
// role changes take effect on the next login.
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UnprotectedRoutes defines routes that don't require JWT authentication
var UnprotectedRoutes = map[string]bool{
	"/health":        true,
	"/health/simple": true,
	"/metrics":       true,
	"/user/register": true,
	"/user/login":    true,
	"/reviews":       true,
	"/reviews/get":   true,
	"/news":          true,
	"/news/get":      true,
}

// GenerateToken creates a new JWT token for the given user.
func GenerateToken(userID uuid.UUID, role models.Role) (string, error) {
	expirationTime := time.Now().Add(tokenExpiration)

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "groove-press-api",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ValidateToken validates the provided JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ApplyJWTMiddleware wraps a handler function with JWT authentication
func ApplyJWTMiddleware(handler http.HandlerFunc, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip JWT validation for unprotected routes
		if UnprotectedRoutes[path] {
			// Still parse a token when one is present, so public routes
			// can serve role-aware views to logged-in callers.
			if claims := optionalClaims(r); claims != nil {
				ctx := SetClaimsInContext(r.Context(), claims)
				handler(w, r.WithContext(ctx))
				return
			}
			handler(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT Error: %v", err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if time.Now().After(claims.ExpiresAt.Time) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}

		ctx := SetClaimsInContext(r.Context(), claims)
		handler(w, r.WithContext(ctx))
	}
}

// optionalClaims parses the Authorization header without failing the
// request. Returns nil on any problem.
func optionalClaims(r *http.Request) *Claims {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil
	}
	claims, err := ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil
	}
	return claims
}

// Define a custom context key type to avoid collisions
type contextKey string

// ClaimsKey is the key used to store the token claims in the context
const ClaimsKey contextKey = "jwt_claims"

// SetClaimsInContext saves the token claims in the request context
func SetClaimsInContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetClaimsFromContext retrieves the token claims from the context
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetUserIDFromContext retrieves the caller's user ID from the context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// GetRoleFromContext retrieves the caller's role, defaulting to USER.
func GetRoleFromContext(ctx context.Context) models.Role {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return models.RoleUser
	}
	return claims.Role
}
