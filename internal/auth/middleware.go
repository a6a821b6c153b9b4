package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// Middleware guards handlers with a bearer token. With an empty secret it lets
// every request through; the planner runs open on a trusted network by default.
type Middleware struct {
	secret []byte
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

func (m Middleware) Enabled() bool { return len(m.secret) > 0 }

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	if !m.Enabled() {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeUnauthorized(w, "missing token")
			return
		}

		subject, err := ParseToken(m.secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next(w, r.WithContext(ctx))
	}
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok && v != ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
