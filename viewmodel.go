package vellum

import (
	"fmt"
	"net/http"

	"github.com/vellum-ws/vellum/domain"
)

// ViewModel bundles everything a template needs for one request: the site
// settings snapshot, flash and error state, per-handler data, and the
// authenticated user resolved lazily from the session cookie.
type ViewModel struct {
	app      *App
	req      *http.Request
	user     *domain.User
	resolved bool
	err      error
	flash    string

	Site map[string]string // Site settings snapshot (title, tagline, ...)
	Data map[string]any    // Per-handler template data
}

// NewViewModel builds the view-model for a request. Settings lookups
// failures leave the snapshot empty; templates fall back to zero values.
func (app *App) NewViewModel(req *http.Request) *ViewModel {
	settings, err := app.Repo.GetSettings()
	if err != nil {
		settings = make(map[string]string)
	}
	return &ViewModel{
		app:  app,
		req:  req,
		Site: settings,
		Data: make(map[string]any),
	}
}

// User resolves the authenticated user at most once per view-model. A missing
// cookie, an unknown or expired session, or a failed user lookup all leave the
// view anonymous; lookup errors are retained for Error().
func (vm *ViewModel) User() *domain.User {
	if vm.resolved {
		return vm.user
	}
	vm.resolved = true

	// The access middleware resolves the user for protected routes, reuse it
	if user, ok := UserFromContext(vm.req.Context()); ok {
		vm.user = user
		return vm.user
	}

	cookie, err := vm.req.Cookie(vm.app.Config.CookieName)
	if err != nil {
		return nil // no cookie, anonymous
	}
	session, err := vm.app.Repo.GetSessionByToken(cookie.Value)
	if err != nil {
		vm.err = fmt.Errorf("resolving session : %w", err)
		return nil
	}
	if session.Expired() {
		return nil
	}
	user, err := vm.app.Repo.GetUserByID(session.UserID)
	if err != nil {
		vm.err = fmt.Errorf("resolving session user : %w", err)
		return nil
	}
	vm.user = user
	return vm.user
}

// IsAuthenticated reports whether the request carries a valid session.
func (vm *ViewModel) IsAuthenticated() bool {
	return vm.User() != nil
}

// IsAdmin reports whether the authenticated user is an admin.
func (vm *ViewModel) IsAdmin() bool {
	user := vm.User()
	return user != nil && user.Admin
}

// Error returns the retained resolution or handler error, if any.
func (vm *ViewModel) Error() error {
	return vm.err
}

// SetError records an error for the template to display.
func (vm *ViewModel) SetError(err error) {
	vm.err = err
}

// Flash returns the one-shot notice for the template.
func (vm *ViewModel) Flash() string {
	return vm.flash
}

// SetFlash records a one-shot notice for the template.
func (vm *ViewModel) SetFlash(message string) {
	vm.flash = message
}

// Request returns the underlying request.
func (vm *ViewModel) Request() *http.Request {
	return vm.req
}
