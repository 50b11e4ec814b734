package middleware

import (
	"net/http"
	"strings"
)

// ExtractToken pulls the bearer token from the Authorization header.
// Returns "" when the header is missing or malformed.
func ExtractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	parts := strings.Split(bearerToken, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
