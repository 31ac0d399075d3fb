package vellum

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/db"
	"github.com/vellum-ws/vellum/domain"
)

// mockRepo is an in-memory Repository used by the handler and middleware
// tests. It mirrors the sentinel errors of the db package.
type mockRepo struct {
	pages    map[string]*domain.Page
	users    map[uuid.UUID]*domain.User
	sessions map[string]*domain.Session
	assets   map[uuid.UUID]*domain.Asset
	hooks    []*domain.Hook
	logs     []*domain.Log
	settings map[string]string
	closed   bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		pages:    make(map[string]*domain.Page),
		users:    make(map[uuid.UUID]*domain.User),
		sessions: make(map[string]*domain.Session),
		assets:   make(map[uuid.UUID]*domain.Asset),
		settings: make(map[string]string),
	}
}

func (m *mockRepo) CreatePage(page *domain.Page) error {
	if _, ok := m.pages[page.Slug]; ok {
		return db.ErrSlugTaken
	}
	m.pages[page.Slug] = page
	return nil
}

func (m *mockRepo) GetPageBySlug(slug string) (*domain.Page, error) {
	if page, ok := m.pages[slug]; ok {
		return page, nil
	}
	return nil, db.ErrNoPage
}

func (m *mockRepo) GetPageByID(id uuid.UUID) (*domain.Page, error) {
	for _, page := range m.pages {
		if page.ID == id {
			return page, nil
		}
	}
	return nil, db.ErrNoPage
}

func (m *mockRepo) GetPages(publishedOnly bool) ([]*domain.Page, error) {
	var pages []*domain.Page
	for _, page := range m.pages {
		if publishedOnly && !page.Published {
			continue
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (m *mockRepo) SearchPages(query string) ([]*domain.Page, error) {
	var pages []*domain.Page
	for _, page := range m.pages {
		if !page.Published {
			continue
		}
		if strings.Contains(strings.ToLower(page.Title), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(page.Body), strings.ToLower(query)) {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

func (m *mockRepo) UpdatePage(page *domain.Page) error {
	for slug, existing := range m.pages {
		if existing.ID == page.ID {
			delete(m.pages, slug)
			m.pages[page.Slug] = page
			return nil
		}
	}
	return db.ErrNoPage
}

func (m *mockRepo) DeletePage(slug string) error {
	if _, ok := m.pages[slug]; !ok {
		return db.ErrNoPage
	}
	delete(m.pages, slug)
	return nil
}

func (m *mockRepo) CreateUser(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockRepo) GetUserByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, db.ErrNoUser
}

func (m *mockRepo) GetUserByUsername(username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, db.ErrNoUser
}

func (m *mockRepo) UpdateUser(user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return db.ErrNoUser
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockRepo) CreateSession(session *domain.Session) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *mockRepo) GetSessionByToken(token string) (*domain.Session, error) {
	if session, ok := m.sessions[token]; ok {
		return session, nil
	}
	return nil, db.ErrNoSession
}

func (m *mockRepo) DeleteSession(token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *mockRepo) DeleteExpiredSessions() error {
	for token, session := range m.sessions {
		if session.Expired() {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *mockRepo) CreateAsset(asset *domain.Asset) error {
	m.assets[asset.ID] = asset
	return nil
}

func (m *mockRepo) GetAssetByID(id uuid.UUID) (*domain.Asset, error) {
	if asset, ok := m.assets[id]; ok {
		return asset, nil
	}
	return nil, db.ErrNoAsset
}

func (m *mockRepo) GetAssets() ([]domain.Asset, error) {
	var assets []domain.Asset
	for _, asset := range m.assets {
		meta := *asset
		meta.Content = nil
		assets = append(assets, meta)
	}
	return assets, nil
}

func (m *mockRepo) DeleteAsset(id uuid.UUID) error {
	if _, ok := m.assets[id]; !ok {
		return db.ErrNoAsset
	}
	delete(m.assets, id)
	return nil
}

func (m *mockRepo) GetHooks() ([]*domain.Hook, error) { return m.hooks, nil }

func (m *mockRepo) GetHookByName(name string) (*domain.Hook, error) {
	for _, hook := range m.hooks {
		if hook.Name == name {
			return hook, nil
		}
	}
	return nil, db.ErrNoHook
}

func (m *mockRepo) GetHookLuaCodeByName(name string) (string, error) {
	hook, err := m.GetHookByName(name)
	if err != nil {
		return "", err
	}
	return hook.LuaContent, nil
}

func (m *mockRepo) UpdateHookLuaCodeByName(name string, luaContent string) error {
	hook, err := m.GetHookByName(name)
	if err != nil {
		return err
	}
	hook.LuaContent = luaContent
	return nil
}

func (m *mockRepo) GetHookSettingsByUUID(id uuid.UUID) (map[string]any, error) {
	for _, hook := range m.hooks {
		if hook.ID == id {
			return hook.Settings, nil
		}
	}
	return nil, db.ErrNoHook
}

func (m *mockRepo) SetHookSettingsByUUID(id uuid.UUID, settings map[string]any) error {
	for _, hook := range m.hooks {
		if hook.ID == id {
			hook.Settings = settings
			return nil
		}
	}
	return db.ErrNoHook
}

func (m *mockRepo) InsertLog(log *domain.Log) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockRepo) GetLogs() ([]*domain.Log, error) { return m.logs, nil }

func (m *mockRepo) GetSetting(key string) (string, error) {
	if value, ok := m.settings[key]; ok {
		return value, nil
	}
	return "", db.ErrNoSetting
}

func (m *mockRepo) SetSetting(key string, value string) error {
	m.settings[key] = value
	return nil
}

func (m *mockRepo) GetSettings() (map[string]string, error) {
	settings := make(map[string]string, len(m.settings))
	for key, value := range m.settings {
		settings[key] = value
	}
	return settings, nil
}

func (m *mockRepo) Close() error {
	m.closed = true
	return nil
}

// newTestApp builds an app backed by an in-memory repository, with logs
// drained in the background so WriteLog never blocks the handlers.
func newTestApp(t *testing.T, options ...func(*App) error) (*App, *mockRepo) {
	t.Helper()

	repo := newMockRepo()
	base := []func(*App) error{
		WithRepo(repo),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	app, err := New(append(base, options...)...)
	if err != nil {
		t.Fatalf("creating app: %v", err)
	}
	app.Config = &Config{
		Address:      "127.0.0.1",
		Port:         "8080",
		BaseURL:      "http://vellum.test",
		CookieName:   "vellum_session",
		SessionHours: 24,
	}
	go app.WriteToDB()
	t.Cleanup(func() { close(app.DBWriteChannel) })
	return app, repo
}

// seedUser adds a user with a hashed password and returns it.
func seedUser(t *testing.T, repo *mockRepo, username, password string, admin bool) *domain.User {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("generating uuid : %v", err)
	}
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("generating salt : %v", err)
	}
	user := &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: HashPassword(password, salt),
		Salt:         salt,
		Admin:        admin,
		CreatedAt:    time.Now(),
	}
	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

// seedSession adds a valid session for the user and returns its token.
func seedSession(t *testing.T, repo *mockRepo, user *domain.User, ttl time.Duration) string {
	t.Helper()

	token, err := newSessionToken()
	if err != nil {
		t.Fatalf("generating session token : %v", err)
	}
	session := &domain.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := repo.CreateSession(session); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return token
}

// seedPage adds a page and returns it.
func seedPage(t *testing.T, repo *mockRepo, slug, title string, published bool) *domain.Page {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("generating uuid : %v", err)
	}
	page := &domain.Page{
		ID:        id,
		Slug:      slug,
		Title:     title,
		Body:      "<p>" + title + "</p>",
		Summary:   title,
		Published: published,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := repo.CreatePage(page); err != nil {
		t.Fatalf("seeding page: %v", err)
	}
	return page
}

// doRequest runs a request through the full handler chain.
func doRequest(t *testing.T, app *App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	return rec
}
