package vellum

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vellum-ws/vellum/domain"
)

// stubHooks is a HookService with overridable behavior per test.
type stubHooks struct {
	onSave   func(page *domain.Page) (*domain.Page, error)
	onRender func(page *domain.Page) (*domain.Page, error)
	reloads  int
}

func (s *stubHooks) OnSave(page *domain.Page) (*domain.Page, error) {
	if s.onSave != nil {
		return s.onSave(page)
	}
	return page, nil
}

func (s *stubHooks) OnRender(page *domain.Page) (*domain.Page, error) {
	if s.onRender != nil {
		return s.onRender(page)
	}
	return page, nil
}

func (s *stubHooks) Reload() error {
	s.reloads++
	return nil
}

func adminRequest(t *testing.T, app *App, repo *mockRepo, method, target string, form url.Values) *http.Request {
	t.Helper()

	user := seedUser(t, repo, "admin", "correct horse", true)
	token := seedSession(t, repo, user, time.Hour)

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(&http.Cookie{Name: app.Config.CookieName, Value: token})
	return req
}

func TestHandleHome(t *testing.T) {
	app, repo := newTestApp(t)
	seedPage(t, repo, "hello-vellum", "Hello Vellum", true)
	seedPage(t, repo, "secret-draft", "Secret Draft", false)

	rec := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hello Vellum") {
		t.Fatalf("expected the published page in the listing, got:\n%s", body)
	}
	if strings.Contains(body, "Secret Draft") {
		t.Fatalf("expected the draft to be hidden, got:\n%s", body)
	}
}

func TestHandlePage(t *testing.T) {
	t.Run("serves a published page", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedPage(t, repo, "hello-vellum", "Hello Vellum", true)

		rec := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/pages/hello-vellum", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusOK, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Hello Vellum") {
			t.Fatalf("expected the page body, got:\n%s", rec.Body.String())
		}
	})

	t.Run("returns 404 for an unknown slug", func(t *testing.T) {
		app, _ := newTestApp(t)

		rec := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/pages/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("hides drafts from anonymous visitors", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedPage(t, repo, "secret-draft", "Secret Draft", false)

		rec := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/pages/secret-draft", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("shows drafts to admins", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedPage(t, repo, "secret-draft", "Secret Draft", false)

		req := adminRequest(t, app, repo, http.MethodGet, "/pages/secret-draft", nil)
		rec := doRequest(t, app, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusOK, rec.Code)
		}
	})

	t.Run("runs the render hooks", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedPage(t, repo, "hello-vellum", "Hello Vellum", true)
		app.Hooks = &stubHooks{onRender: func(page *domain.Page) (*domain.Page, error) {
			rewritten := *page
			rewritten.Body = "<p>rewritten by hook</p>"
			return &rewritten, nil
		}}

		rec := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/pages/hello-vellum", nil))

		if !strings.Contains(rec.Body.String(), "rewritten by hook") {
			t.Fatalf("expected the hook rewrite, got:\n%s", rec.Body.String())
		}
	})
}

func TestHandleSearch(t *testing.T) {
	app, repo := newTestApp(t)
	seedPage(t, repo, "go-notes", "Notes on Go", true)
	seedPage(t, repo, "lua-notes", "Notes on Lua", true)

	rec := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/search?q=Lua", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Notes on Lua") {
		t.Fatalf("expected the matching page, got:\n%s", body)
	}
	if strings.Contains(body, "Notes on Go") {
		t.Fatalf("expected the non-matching page to be absent, got:\n%s", body)
	}
}

func TestHandleLogin(t *testing.T) {
	t.Run("issues a session cookie on valid credentials", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedUser(t, repo, "admin", "correct horse", true)

		form := url.Values{}
		form.Set("username", "admin")
		form.Set("password", "correct horse")
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusSeeOther, rec.Code)
		}
		if rec.Header().Get("Location") != "/admin" {
			t.Fatalf("\nwanted:\n/admin\ngot:\n%s", rec.Header().Get("Location"))
		}

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != app.Config.CookieName {
			t.Fatalf("expected a session cookie, got %v", cookies)
		}
		if !cookies[0].HttpOnly {
			t.Fatal("expected the session cookie to be http-only")
		}
		if _, err := repo.GetSessionByToken(cookies[0].Value); err != nil {
			t.Fatalf("expected the session to be persisted: %v", err)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedUser(t, repo, "admin", "correct horse", true)

		form := url.Values{}
		form.Set("username", "admin")
		form.Set("password", "battery staple")
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusUnauthorized, rec.Code)
		}
		if len(repo.sessions) != 0 {
			t.Fatalf("expected no session, got %d", len(repo.sessions))
		}
	})

	t.Run("rejects an unknown user", func(t *testing.T) {
		app, _ := newTestApp(t)

		form := url.Values{}
		form.Set("username", "nobody")
		form.Set("password", "anything")
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusUnauthorized, rec.Code)
		}
	})
}

func TestHandleLogout(t *testing.T) {
	app, repo := newTestApp(t)
	user := seedUser(t, repo, "admin", "correct horse", true)
	token := seedSession(t, repo, user, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: app.Config.CookieName, Value: token})
	rec := doRequest(t, app, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusSeeOther, rec.Code)
	}
	if len(repo.sessions) != 0 {
		t.Fatalf("expected the session to be deleted, got %d", len(repo.sessions))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected an expired cookie, got %v", cookies)
	}
}

func TestHandleAdminPageCreate(t *testing.T) {
	t.Run("creates a page and redirects", func(t *testing.T) {
		app, repo := newTestApp(t)

		form := url.Values{}
		form.Set("title", "Hello, World!")
		form.Set("body", "<p>first post</p>")
		form.Set("tags", "go, lua")
		form.Set("published", "on")
		req := adminRequest(t, app, repo, http.MethodPost, "/admin/pages/new", form)

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d\n%s", http.StatusSeeOther, rec.Code, rec.Body.String())
		}
		page, err := repo.GetPageBySlug("hello-world")
		if err != nil {
			t.Fatalf("expected the page with a derived slug: %v", err)
		}
		if !page.Published {
			t.Fatal("expected the page to be published")
		}
		if len(page.Tags) != 2 || page.Tags[0] != "go" || page.Tags[1] != "lua" {
			t.Fatalf("\nwanted:\n[go lua]\ngot:\n%v", page.Tags)
		}
	})

	t.Run("runs the save hooks before persisting", func(t *testing.T) {
		app, repo := newTestApp(t)
		app.Hooks = &stubHooks{onSave: func(page *domain.Page) (*domain.Page, error) {
			rewritten := *page
			rewritten.Summary = "hook summary"
			return &rewritten, nil
		}}

		form := url.Values{}
		form.Set("title", "Hooked")
		form.Set("body", "<p>body</p>")
		req := adminRequest(t, app, repo, http.MethodPost, "/admin/pages/new", form)

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusSeeOther, rec.Code)
		}
		page, err := repo.GetPageBySlug("hooked")
		if err != nil {
			t.Fatalf("getting page: %v", err)
		}
		if page.Summary != "hook summary" {
			t.Fatalf("\nwanted:\nhook summary\ngot:\n%q", page.Summary)
		}
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		app, repo := newTestApp(t)

		form := url.Values{}
		form.Set("body", "<p>no title</p>")
		req := adminRequest(t, app, repo, http.MethodPost, "/admin/pages/new", form)

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("returns 409 on a slug conflict", func(t *testing.T) {
		app, repo := newTestApp(t)
		seedPage(t, repo, "taken", "Taken", true)

		form := url.Values{}
		form.Set("title", "Taken")
		form.Set("slug", "taken")
		req := adminRequest(t, app, repo, http.MethodPost, "/admin/pages/new", form)

		rec := doRequest(t, app, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusConflict, rec.Code)
		}
	})
}

func TestHandleAdminPageDelete(t *testing.T) {
	app, repo := newTestApp(t)
	seedPage(t, repo, "doomed", "Doomed", true)

	req := adminRequest(t, app, repo, http.MethodPost, "/admin/pages/doomed/delete", url.Values{})
	rec := doRequest(t, app, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusSeeOther, rec.Code)
	}
	if _, err := repo.GetPageBySlug("doomed"); err == nil {
		t.Fatal("expected the page to be deleted")
	}
}

func TestHandleAdminHookUpdate(t *testing.T) {
	app, repo := newTestApp(t)
	hooks := &stubHooks{}
	app.Hooks = hooks
	repo.hooks = append(repo.hooks, &domain.Hook{Name: "typograph", LuaContent: "-- old"})

	form := url.Values{}
	form.Set("code", `function on_render(page) return page end`)
	req := adminRequest(t, app, repo, http.MethodPost, "/admin/hooks/typograph", form)

	rec := doRequest(t, app, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusSeeOther, rec.Code)
	}
	code, err := repo.GetHookLuaCodeByName("typograph")
	if err != nil {
		t.Fatalf("getting hook code: %v", err)
	}
	if !strings.Contains(code, "on_render") {
		t.Fatalf("expected the hook code to be updated, got %q", code)
	}
	if hooks.reloads != 1 {
		t.Fatalf("expected one runtime reload, got %d", hooks.reloads)
	}
}

func TestHandleAdminSettings(t *testing.T) {
	app, repo := newTestApp(t)

	form := url.Values{}
	form.Set(domain.SettingSiteTitle, "Vellum")
	form.Set(domain.SettingSiteTagline, "notes and margins")
	req := adminRequest(t, app, repo, http.MethodPost, "/admin/settings", form)

	rec := doRequest(t, app, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", http.StatusSeeOther, rec.Code)
	}
	if repo.settings[domain.SettingSiteTitle] != "Vellum" {
		t.Fatalf("\nwanted:\nVellum\ngot:\n%q", repo.settings[domain.SettingSiteTitle])
	}
	if repo.settings[domain.SettingSiteTagline] != "notes and margins" {
		t.Fatalf("\nwanted:\nnotes and margins\ngot:\n%q", repo.settings[domain.SettingSiteTagline])
	}
}
