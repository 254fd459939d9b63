package utils

import (
	"context"
	"net/http"
	"strings"

	"vibin/apperrors"
)

// UserHeader carries the authenticated user id, set by the auth gateway.
const UserHeader = "X-User-Id"

type ctxKey struct{}

// RequireUser rejects requests without an authenticated user and stores
// the user id on the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			WriteError(w, apperrors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

// ActingUser returns the authenticated user of the request.
func ActingUser(r *http.Request) string {
	userID, _ := r.Context().Value(ctxKey{}).(string)
	return userID
}

// CheckActingUser fails unless userID is the authenticated user.
func CheckActingUser(r *http.Request, userID string) error {
	if acting := ActingUser(r); acting == "" || acting != userID {
		return apperrors.Unauthorized("acting user does not match " + userID)
	}
	return nil
}
