package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// GuestTokenHeader carries the opaque guest cart identifier.
const GuestTokenHeader = "X-PM-Guest-Token"

// GuestToken resolves the guest cart token for unauthenticated requests.
// If the client did not send one, a fresh token is minted and echoed back
// so the next request can reuse it. Authenticated requests skip the token
// entirely.
func GuestToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(r.Header.Get(GuestTokenHeader))
			if token == "" {
				token = uuid.NewString()
			}
			w.Header().Set(GuestTokenHeader, token)

			ctx := WithGuestToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
