package vellum

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vellum-ws/vellum/db"
	"github.com/vellum-ws/vellum/domain"
)

// renderHooks runs the render hooks over a page, falling back to the stored
// page when a hook fails.
func (app *App) renderHooks(page *domain.Page) *domain.Page {
	if app.Hooks == nil {
		return page
	}
	rewritten, err := app.Hooks.OnRender(page)
	if err != nil {
		app.WriteLog("WARN", fmt.Sprintf("render hooks for %s : %s", page.Slug, err))
		return page
	}
	return rewritten
}

// pageSize reads a page-size setting, falling back when unset or invalid.
func (app *App) pageSize(key string, fallback int) int {
	value, err := app.Repo.GetSetting(key)
	if err != nil {
		return fallback
	}
	size, err := strconv.Atoi(value)
	if err != nil || size < 1 {
		return fallback
	}
	return size
}

func (app *App) handleHome(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	pages, err := app.Repo.GetPages(true)
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing pages : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	size := app.pageSize(domain.SettingPageSize, 10)
	pageNum := 1
	if raw := ParseQuery(req).GetDefault("page", "1"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageNum = parsed
		}
	}
	start := (pageNum - 1) * size
	if start > len(pages) {
		start = len(pages)
	}
	end := start + size
	if end > len(pages) {
		end = len(pages)
	}

	vm.Data["Pages"] = pages[start:end]
	vm.Data["Page"] = pageNum
	vm.Data["HasNext"] = end < len(pages)
	vm.Data["HasPrev"] = pageNum > 1
	app.render(w, req, "home.html", vm)
}

func (app *App) handlePage(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	slug := req.PathValue("slug")
	page, err := app.Repo.GetPageBySlug(slug)
	if err != nil {
		if errors.Is(err, db.ErrNoPage) {
			http.NotFound(w, req)
			return
		}
		app.WriteLog("ERROR", fmt.Sprintf("getting page %s : %s", slug, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	// Drafts are only visible to admins
	if !page.Published && !vm.IsAdmin() {
		http.NotFound(w, req)
		return
	}

	vm.Data["Page"] = app.renderHooks(page)
	app.render(w, req, "page.html", vm)
}

func (app *App) handleSearch(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	query := ParseQuery(req).GetDefault("q", "")
	pages := []*domain.Page{}
	if query != "" {
		var err error
		pages, err = app.Repo.SearchPages(query)
		if err != nil {
			app.WriteLog("ERROR", fmt.Sprintf("searching pages for %q : %s", query, err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
	vm.Data["Query"] = query
	vm.Data["Pages"] = pages
	app.render(w, req, "search.html", vm)
}
