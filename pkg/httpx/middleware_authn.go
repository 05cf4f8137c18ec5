package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// SessionVerifier turns a session token into the user ID it carries.
type SessionVerifier interface {
	Verify(token string) (userID string, err error)
}

// SessionAuthn resolves the session cookie into a user ID on the request
// context. Requests without a valid cookie continue anonymously; handlers and
// services decide whether an identity is required.
func SessionAuthn(v SessionVerifier, cookie SessionCookie) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := cookie.Read(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Debug("ignoring session cookie", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = slogx.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
