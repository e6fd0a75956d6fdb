package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/tamilore/orgvoice/api/jsonutil"
	"github.com/tamilore/orgvoice/api/tokens"
)

type claimsKey struct{}

func AuthMiddleware(tokenService tokens.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				response := jsonutil.Response{
					Status:  "error",
					Message: "authorization header required",
				}
				jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
				return
			}

			tokenString := strings.Split(authHeader, " ")

			if len(tokenString) != 2 || tokenString[0] != "Bearer" {
				response := jsonutil.Response{
					Status:  "error",
					Message: "invalid authorization header format",
				}
				jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
				return
			}

			data, err := tokenService.DecodeToken(tokenString[1])
			if err != nil {
				response := jsonutil.Response{
					Status:  "error",
					Message: "invalid or expired token",
				}
				jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(request.Context(), claimsKey{}, data)

			next.ServeHTTP(responseWriter, request.WithContext(ctx))
		})
	}
}

// WithClaims returns a context carrying the given claims, the same way
// AuthMiddleware sets them.
func WithClaims(ctx context.Context, claims *tokens.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the decoded token claims set by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*tokens.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*tokens.Claims)
	return claims, ok
}

// RequireElevated rejects requests whose token role is not hr or admin.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		claims, ok := ClaimsFromContext(request.Context())
		if !ok || (claims.Role != "hr" && claims.Role != "admin") {
			response := jsonutil.Response{
				Status:  "error",
				Message: "insufficient permissions",
			}
			jsonutil.WriteJSONResponse(responseWriter, response, http.StatusForbidden)
			return
		}
		next.ServeHTTP(responseWriter, request)
	})
}
