package vellum

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/db"
	"github.com/vellum-ws/vellum/domain"
	"github.com/vellum-ws/vellum/multidict"
)

// saveHooks runs the save hooks over a page before persistence.
func (app *App) saveHooks(page *domain.Page) *domain.Page {
	if app.Hooks == nil {
		return page
	}
	rewritten, err := app.Hooks.OnSave(page)
	if err != nil {
		app.WriteLog("WARN", fmt.Sprintf("save hooks for %s : %s", page.Slug, err))
		return page
	}
	return rewritten
}

// applyPageForm copies the editor form fields onto the page. An empty slug
// is derived from the title.
func applyPageForm(page *domain.Page, form *multidict.Dict[string]) {
	page.Title = form.GetDefault("title", page.Title)
	page.Body = form.GetDefault("body", "")
	page.Summary = form.GetDefault("summary", "")
	page.Published = form.GetDefault("published", "") == "on"
	// the editor submits tags either as repeated fields or comma separated
	page.Tags = nil
	for _, field := range form.GetList("tags") {
		for _, tag := range strings.Split(field, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				page.Tags = append(page.Tags, tag)
			}
		}
	}
	slug := form.GetDefault("slug", "")
	if slug == "" {
		slug = page.Title
	}
	page.Slug = domain.Slugify(slug)
}

func (app *App) handleAdminDashboard(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	pages, err := app.Repo.GetPages(false)
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing pages : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	assets, err := app.Repo.GetAssets()
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing assets : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	vm.Data["Pages"] = pages
	vm.Data["Assets"] = assets
	app.render(w, req, "admin_dashboard.html", vm)
}

func (app *App) handleAdminPages(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	pages, err := app.Repo.GetPages(false)
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing pages : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	vm.Data["Pages"] = pages
	app.render(w, req, "admin_pages.html", vm)
}

func (app *App) handleAdminPageForm(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	vm.Data["Page"] = &domain.Page{}
	app.render(w, req, "admin_page_edit.html", vm)
}

func (app *App) handleAdminPageCreate(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	user := vm.User()
	if user == nil {
		http.Error(w, ErrAuthRequired.Error(), http.StatusUnauthorized)
		return
	}
	form, err := ParseForm(req)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	page := &domain.Page{
		ID:        id,
		AuthorID:  user.ID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	applyPageForm(page, form)
	if page.Title == "" || page.Slug == "" {
		app.writeError(w, http.StatusBadRequest, "title required")
		return
	}

	page = app.saveHooks(page)
	if err := app.Repo.CreatePage(page); err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("creating page %s : %s", page.Slug, err))
		vm.SetError(fmt.Errorf("saving page: %w", err))
		vm.Data["Page"] = page
		w.WriteHeader(http.StatusConflict)
		app.render(w, req, "admin_page_edit.html", vm)
		return
	}
	if page.Published {
		app.PublishPage(req.Context(), page)
	}
	app.WriteLog("INFO", fmt.Sprintf("page %s created", page.Slug))
	http.Redirect(w, req, "/admin/pages", http.StatusSeeOther)
}

func (app *App) handleAdminPageEdit(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	page, err := app.Repo.GetPageBySlug(req.PathValue("slug"))
	if err != nil {
		if errors.Is(err, db.ErrNoPage) {
			http.NotFound(w, req)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	vm.Data["Page"] = page
	app.render(w, req, "admin_page_edit.html", vm)
}

func (app *App) handleAdminPageUpdate(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	page, err := app.Repo.GetPageBySlug(req.PathValue("slug"))
	if err != nil {
		if errors.Is(err, db.ErrNoPage) {
			http.NotFound(w, req)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	form, err := ParseForm(req)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	applyPageForm(page, form)
	page.UpdatedAt = time.Now()

	page = app.saveHooks(page)
	if err := app.Repo.UpdatePage(page); err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("updating page %s : %s", page.Slug, err))
		vm.SetError(fmt.Errorf("saving page: %w", err))
		vm.Data["Page"] = page
		w.WriteHeader(http.StatusConflict)
		app.render(w, req, "admin_page_edit.html", vm)
		return
	}
	if page.Published {
		app.PublishPage(req.Context(), page)
	}
	app.WriteLog("INFO", fmt.Sprintf("page %s updated", page.Slug))
	http.Redirect(w, req, "/admin/pages", http.StatusSeeOther)
}

func (app *App) handleAdminPageDelete(w http.ResponseWriter, req *http.Request) {
	slug := req.PathValue("slug")
	if err := app.Repo.DeletePage(slug); err != nil {
		if errors.Is(err, db.ErrNoPage) {
			http.NotFound(w, req)
			return
		}
		app.WriteLog("ERROR", fmt.Sprintf("deleting page %s : %s", slug, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	app.WriteLog("INFO", fmt.Sprintf("page %s deleted", slug))
	http.Redirect(w, req, "/admin/pages", http.StatusSeeOther)
}

func (app *App) handleAdminHooks(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	hooks, err := app.Repo.GetHooks()
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing hooks : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	vm.Data["Hooks"] = hooks
	app.render(w, req, "admin_hooks.html", vm)
}

func (app *App) handleAdminHookEdit(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	hook, err := app.Repo.GetHookByName(req.PathValue("name"))
	if err != nil {
		if errors.Is(err, db.ErrNoHook) {
			http.NotFound(w, req)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	vm.Data["Hook"] = hook
	app.render(w, req, "admin_hook_edit.html", vm)
}

func (app *App) handleAdminHookUpdate(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	form, err := ParseForm(req)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	code, err := form.Get("code")
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "code field required")
		return
	}
	if err := app.Repo.UpdateHookLuaCodeByName(name, code); err != nil {
		if errors.Is(err, db.ErrNoHook) {
			http.NotFound(w, req)
			return
		}
		app.WriteLog("ERROR", fmt.Sprintf("updating hook %s : %s", name, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if app.Hooks != nil {
		if err := app.Hooks.Reload(); err != nil {
			app.WriteLog("WARN", fmt.Sprintf("reloading hooks : %s", err))
		}
	}
	app.WriteLog("INFO", fmt.Sprintf("hook %s updated", name))
	http.Redirect(w, req, "/admin/hooks", http.StatusSeeOther)
}

func (app *App) handleAdminLogs(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	logs, err := app.Repo.GetLogs()
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("listing logs : %s", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	vm.Data["Logs"] = logs
	app.render(w, req, "admin_logs.html", vm)
}

// handleAdminSettings persists the site settings form. Only known setting
// keys are accepted.
func (app *App) handleAdminSettings(w http.ResponseWriter, req *http.Request) {
	form, err := ParseForm(req)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	known := []string{
		domain.SettingSiteTitle,
		domain.SettingSiteURL,
		domain.SettingSiteTagline,
		domain.SettingFeedPageSize,
		domain.SettingPageSize,
	}
	for _, key := range known {
		value, err := form.Get(key)
		if err != nil {
			continue
		}
		if err := app.Repo.SetSetting(key, value); err != nil {
			app.WriteLog("ERROR", fmt.Sprintf("setting %s : %s", key, err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, req, "/admin", http.StatusSeeOther)
}
