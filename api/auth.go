package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// The admin gate is one shared access code and a boolean session cookie
// with no expiry, token, or revocation. It keeps casual visitors off the
// dashboard and nothing more. It is NOT a security boundary: anyone who
// can reach the API can also reach the store through the public
// endpoints, so do not put anything behind this gate that actually needs
// protecting.

const sessionCookieName = "admin_session"
const sessionCookieValue = "authenticated"

func (a *API) postAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			a.writeError(w, http.StatusBadRequest, EmptyBody, "Must specify a body")
			return
		}
		a.writeError(w, http.StatusBadRequest, InvalidBody, "Invalid body")
		return
	}

	if a.config.AdminAccessCode == "" ||
		subtle.ConstantTimeCompare([]byte(body.AccessCode), []byte(a.config.AdminAccessCode)) != 1 {
		a.logger.Warn("Rejected admin login attempt")

		a.writeError(w, http.StatusUnauthorized, AuthError, "Incorrect access code")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionCookieValue,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) postAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value != sessionCookieValue {
			a.writeError(w, http.StatusUnauthorized, AuthError, "Admin session required")
			return
		}

		next(w, r)
	}
}
