package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// --- base auth middleware ---

// Auth validates the bearer JWT and injects the caller into context.
// Requests without an Authorization header pass through as anonymous;
// protected endpoints reject those via RequireAuth/RequireDriver.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		caller, err := h.parseToken(token)
		if err != nil {
			h.log.Error(wrap.ErrorCtx(ctx, err), "failed to authenticate caller", err)
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithCaller(ctx, caller)))
	})
}

// RequireAuth allows only authenticated callers.
func (h *Middleware) RequireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if models.CallerFromContext(r.Context()) == nil {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireDriver allows only callers holding a driver account.
func (h *Middleware) RequireDriver(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := models.CallerFromContext(r.Context())
		if caller == nil {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if !caller.IsDriver {
			errorResponse(w, http.StatusForbidden, "forbidden: driver account required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseToken verifies an HS256 token and maps its claims to a caller.
func (h *Middleware) parseToken(tokenStr string) (*models.Caller, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("token has no subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	isDriver, _ := claims["is_driver"].(bool)

	return &models.Caller{
		UserID:   userID,
		IsDriver: isDriver,
	}, nil
}

// --- header parser ---
func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
