package vellum

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/vellum-ws/vellum/domain"
)

// HashPassword returns the hex digest of the salted password.
func HashPassword(password, salt string) string {
	digest := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(digest[:])
}

// NewSalt returns a random hex salt for password hashing.
func NewSalt() (string, error) {
	return randomHex(16)
}

// newSessionToken returns a random hex session token.
func newSessionToken() (string, error) {
	return randomHex(32)
}

func randomHex(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes : %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// verifyPassword compares the stored hash against the candidate in constant time.
func verifyPassword(user *domain.User, password string) bool {
	candidate := HashPassword(password, user.Salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(user.PasswordHash)) == 1
}

func (app *App) handleLoginForm(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	if vm.IsAuthenticated() {
		http.Redirect(w, req, "/admin", http.StatusSeeOther)
		return
	}
	app.render(w, req, "login.html", vm)
}

func (app *App) handleLogin(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	form, err := ParseForm(req)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := form.GetDefault("username", "")
	password := form.GetDefault("password", "")

	user, err := app.Repo.GetUserByUsername(username)
	if err != nil || !verifyPassword(user, password) {
		app.WriteLog("WARN", fmt.Sprintf("failed login for %q", username))
		vm.SetError(fmt.Errorf("invalid username or password"))
		w.WriteHeader(http.StatusUnauthorized)
		app.render(w, req, "login.html", vm)
		return
	}

	token, err := newSessionToken()
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("generating session token : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	session := &domain.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(app.Config.SessionTTL()),
	}
	if err := app.Repo.CreateSession(session); err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("creating session for %s : %s", username, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     app.Config.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	app.WriteLog("INFO", fmt.Sprintf("user %s logged in", username))
	http.Redirect(w, req, "/admin", http.StatusSeeOther)
}

func (app *App) handleLogout(w http.ResponseWriter, req *http.Request) {
	if cookie, err := req.Cookie(app.Config.CookieName); err == nil {
		if err := app.Repo.DeleteSession(cookie.Value); err != nil {
			app.WriteLog("WARN", fmt.Sprintf("deleting session : %s", err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.Config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, req, "/", http.StatusSeeOther)
}
