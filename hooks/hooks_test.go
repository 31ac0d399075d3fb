package hooks

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/domain"
)

type mockService struct {
	GetConfigDirFunc func() (string, error)
	GetHookRepoFunc  func() (domain.HookRepository, error)
	GetSiteRepoFunc  func() (domain.SiteRepository, error)
	WriteLogFunc     func(level string, message string, options ...func(log *domain.Log) error) error
}

func (m *mockService) GetConfigDir() (string, error) {
	if m.GetConfigDirFunc != nil {
		return m.GetConfigDirFunc()
	}
	return "/tmp/vellum-test", nil
}

func (m *mockService) GetHookRepo() (domain.HookRepository, error) {
	if m.GetHookRepoFunc != nil {
		return m.GetHookRepoFunc()
	}
	return nil, nil
}

func (m *mockService) GetSiteRepo() (domain.SiteRepository, error) {
	if m.GetSiteRepoFunc != nil {
		return m.GetSiteRepoFunc()
	}
	return &mockSiteRepo{}, nil
}

func (m *mockService) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	if m.WriteLogFunc != nil {
		return m.WriteLogFunc(level, message, options...)
	}
	return nil
}

type mockHookRepo struct {
	hooks         []*domain.Hook
	settingsStore map[uuid.UUID]map[string]any
	forceSetError bool
}

func (m *mockHookRepo) GetHooks() ([]*domain.Hook, error)                 { return m.hooks, nil }
func (m *mockHookRepo) GetHookByName(name string) (*domain.Hook, error)   { return nil, nil }
func (m *mockHookRepo) GetHookLuaCodeByName(name string) (string, error)  { return "", nil }
func (m *mockHookRepo) UpdateHookLuaCodeByName(name string, c string) error { return nil }

func (m *mockHookRepo) GetHookSettingsByUUID(id uuid.UUID) (map[string]any, error) {
	if settings, ok := m.settingsStore[id]; ok {
		return settings, nil
	}
	return make(map[string]any), nil
}

func (m *mockHookRepo) SetHookSettingsByUUID(id uuid.UUID, settings map[string]any) error {
	if m.forceSetError {
		return errors.New("forced set error")
	}
	if m.settingsStore == nil {
		m.settingsStore = make(map[uuid.UUID]map[string]any)
	}
	m.settingsStore[id] = settings
	return nil
}

type mockSiteRepo struct {
	settings map[string]string
}

func (m *mockSiteRepo) GetSetting(key string) (string, error) {
	if value, ok := m.settings[key]; ok {
		return value, nil
	}
	return "", errors.New("no setting")
}

func (m *mockSiteRepo) SetSetting(key, value string) error {
	if m.settings == nil {
		m.settings = make(map[string]string)
	}
	m.settings[key] = value
	return nil
}

func (m *mockSiteRepo) GetSettings() (map[string]string, error) {
	return m.settings, nil
}

func setupTestHook(t *testing.T, luaCode string, options ...func(*Runtime) error) (*Runtime, *mockService) {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("generating uuid : %v", err)
	}
	hook := &domain.Hook{
		ID:         id,
		Name:       "test-hook",
		LuaContent: luaCode,
	}
	runtime := &Runtime{Data: hook}

	mockSvc := &mockService{}

	err = runtime.PrepareState(mockSvc, options)
	if err != nil {
		t.Fatalf("preparing state: %v", err)
	}

	return runtime, mockSvc
}
