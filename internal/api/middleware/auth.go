package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"querymap/internal/api/utils"
)

const authRealm = `Bearer realm="querymap"`

// Auth admits requests carrying "Authorization: Bearer <token>". Missing and
// wrong credentials get distinct codes so a client can tell them apart.
func Auth(token string, next http.Handler) http.Handler {
	want := []byte(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			deny(w, "Missing bearer token", "UNAUTHORIZED")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			deny(w, "Invalid bearer token", "INVALID_TOKEN")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(header string) (string, bool) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(rest)
	return tok, tok != ""
}

func deny(w http.ResponseWriter, msg, code string) {
	w.Header().Set("WWW-Authenticate", authRealm)
	utils.Problem{Status: http.StatusUnauthorized, Message: msg, Code: code}.Write(w)
}
