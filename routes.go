package vellum

import (
	"fmt"
	"net/http"
)

// Route maps a method and a ServeMux pattern to its handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Routes returns the full route table. Admin routes are protected by the
// access policy, not by the table itself.
func (app *App) Routes() []Route {
	return []Route{
		// public
		{http.MethodGet, "/{$}", app.handleHome},
		{http.MethodGet, "/pages/{slug}", app.handlePage},
		{http.MethodGet, "/search", app.handleSearch},
		{http.MethodGet, "/feed.xml", app.handleFeed},
		{http.MethodGet, "/sitemap.xml", app.handleSitemap},
		{http.MethodGet, "/assets/{id}", app.handleAsset},
		// auth
		{http.MethodGet, "/login", app.handleLoginForm},
		{http.MethodPost, "/login", app.handleLogin},
		{http.MethodPost, "/logout", app.handleLogout},
		// admin
		{http.MethodGet, "/admin", app.handleAdminDashboard},
		{http.MethodGet, "/admin/pages", app.handleAdminPages},
		{http.MethodGet, "/admin/pages/new", app.handleAdminPageForm},
		{http.MethodPost, "/admin/pages/new", app.handleAdminPageCreate},
		{http.MethodGet, "/admin/pages/{slug}/edit", app.handleAdminPageEdit},
		{http.MethodPost, "/admin/pages/{slug}/edit", app.handleAdminPageUpdate},
		{http.MethodPost, "/admin/pages/{slug}/delete", app.handleAdminPageDelete},
		{http.MethodPost, "/admin/assets", app.handleAssetUpload},
		{http.MethodPost, "/admin/assets/{id}/delete", app.handleAssetDelete},
		{http.MethodGet, "/admin/hooks", app.handleAdminHooks},
		{http.MethodGet, "/admin/hooks/{name}", app.handleAdminHookEdit},
		{http.MethodPost, "/admin/hooks/{name}", app.handleAdminHookUpdate},
		{http.MethodGet, "/admin/logs", app.handleAdminLogs},
		{http.MethodPost, "/admin/settings", app.handleAdminSettings},
	}
}

// Handler registers the route table on a mux and wraps it in the middleware
// chain: request context, recovery, access log, access policy, compression.
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range app.Routes() {
		mux.Handle(fmt.Sprintf("%s %s", route.Method, route.Pattern), route.Handler)
	}
	return chain(mux,
		app.withRequestContext,
		app.withRecovery,
		app.withAccessLog,
		app.withAccess,
		app.withCompression,
	)
}
