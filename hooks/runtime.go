package hooks

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/core"
	"github.com/vellum-ws/vellum/domain"
)

// Service defines the methods the hook runtime consumes from the host
// application. It is satisfied by *vellum.App and mocked in tests.
type Service interface {
	GetConfigDir() (string, error)
	GetHookRepo() (domain.HookRepository, error)
	GetSiteRepo() (domain.SiteRepository, error)
	WriteLog(level string, message string, options ...func(log *domain.Log) error) error
}

// HookLog is a single line captured from a hook's print output.
type HookLog struct {
	Time time.Time // When the line was printed
	Text string    // The printed text
}

// Runtime holds a hook's Lua state. The state is prepared once from the
// hook's source and reused for every page that passes through.
type Runtime struct {
	Data     *domain.Hook        // The hook row backing this runtime
	LuaState *lua.State          // The prepared Lua state
	Logs     []HookLog           // Captured print output
	OnLog    func(HookLog) error // Called for each captured print line
	service  Service
}

// PrepareState creates the sandboxed Lua state, registers the vellum library
// and types, applies the runtime options, and loads the hook's source.
func (runtime *Runtime) PrepareState(service Service, options []func(*Runtime) error) error {
	l := lua.NewState()

	// Open a restricted library set. Hooks rewrite strings, so the string
	// library stays in; os, io, and the loaders stay out.
	libraries := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "math", Function: lua.MathOpen},
		{Name: "bit32", Function: lua.Bit32Open},
	}
	for _, library := range libraries {
		lua.Require(l, library.Name, library.Function, true)
		l.Pop(1)
	}
	restricted := []string{
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"require",
		"package",
		"debug",
		"collectgarbage",
		"os",
		"io",
	}
	for _, name := range restricted {
		l.PushNil()
		l.SetGlobal(name)
	}

	runtime.LuaState = l
	runtime.service = service

	// The library functions read the hook ID back out of the registry
	l.PushString(runtime.Data.ID.String())
	l.SetField(lua.RegistryIndex, "hook_id")

	registerVellumLibrary(l, service)
	RegisterSiteType(runtime)
	RegisterCustomPrint(runtime)

	if runtime.OnLog == nil {
		runtime.OnLog = func(entry HookLog) error {
			return service.WriteLog("INFO", entry.Text, core.LogWithHookID(runtime.Data.ID))
		}
	}

	for _, option := range options {
		if err := option(runtime); err != nil {
			return fmt.Errorf("applying runtime option : %w", err)
		}
	}

	if runtime.Data.LuaContent != "" {
		if err := runtime.ExecuteLua(runtime.Data.LuaContent); err != nil {
			return fmt.Errorf("loading hook %s : %w", runtime.Data.Name, err)
		}
	}
	return nil
}

// ExecuteLua runs a chunk of Lua code in the runtime's state.
func (runtime *Runtime) ExecuteLua(code string) error {
	if err := lua.DoString(runtime.LuaState, code); err != nil {
		return fmt.Errorf("executing lua : %w", err)
	}
	return nil
}

// WithLogHandler replaces the default print capture handler.
func WithLogHandler(handler func(HookLog) error) func(*Runtime) error {
	return func(runtime *Runtime) error {
		runtime.OnLog = handler
		return nil
	}
}

// pageTable converts a page to the plain table hooks receive.
func pageTable(page *domain.Page) map[string]any {
	tags := make([]string, len(page.Tags))
	copy(tags, page.Tags)
	return map[string]any{
		"id":         page.ID.String(),
		"slug":       page.Slug,
		"title":      page.Title,
		"body":       page.Body,
		"summary":    page.Summary,
		"published":  page.Published,
		"tags":       tags,
		"created_at": page.CreatedAt.UnixMilli(),
		"updated_at": page.UpdatedAt.UnixMilli(),
	}
}

// applyPageTable copies the mutable fields of a returned page table onto the
// page. The id and timestamps are not hook-writable.
func applyPageTable(page *domain.Page, table map[string]any) {
	if title, ok := table["title"].(string); ok {
		page.Title = title
	}
	if slug, ok := table["slug"].(string); ok {
		page.Slug = slug
	}
	if body, ok := table["body"].(string); ok {
		page.Body = body
	}
	if summary, ok := table["summary"].(string); ok {
		page.Summary = summary
	}
	if published, ok := table["published"].(bool); ok {
		page.Published = published
	}
	if rawTags, ok := table["tags"].([]any); ok {
		tags := make([]string, 0, len(rawTags))
		for _, rawTag := range rawTags {
			if tag, ok := rawTag.(string); ok {
				tags = append(tags, tag)
			}
		}
		page.Tags = tags
	}
}

// CallPage invokes the named hook function with the page as a table. A
// missing function or a nil return leaves the page unchanged; a returned
// table produces a rewritten copy.
func (runtime *Runtime) CallPage(function string, page *domain.Page) (*domain.Page, error) {
	l := runtime.LuaState
	top := l.Top()
	defer l.SetTop(top)

	l.Global(function)
	if l.IsNil(-1) {
		return page, nil
	}
	util.DeepPush(l, pageTable(page))
	if err := l.ProtectedCall(1, 1, 0); err != nil {
		return nil, fmt.Errorf("calling %s : %w", function, err)
	}
	if l.IsNil(-1) {
		return page, nil
	}
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("%s should return the page table or nil", function)
	}
	val, err := protectedTableValue(l, -1)
	if err != nil {
		return nil, fmt.Errorf("reading %s result : %w", function, err)
	}
	table, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s should return the page table, got %T", function, val)
	}

	rewritten := *page
	applyPageTable(&rewritten, table)
	return &rewritten, nil
}

// getHookID reads the hook ID the runtime stored in the Lua registry.
func getHookID(l *lua.State) uuid.UUID {
	l.Field(lua.RegistryIndex, "hook_id")
	idString, ok := l.ToString(-1)
	l.Pop(1)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(idString)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// goValue converts the Lua value at index to its Go representation.
func goValue(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return nil
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeNumber:
		number, _ := l.ToNumber(index)
		return number
	case lua.TypeString:
		str, _ := l.ToString(index)
		return str
	case lua.TypeTable:
		return tableValue(l, index)
	default:
		return nil
	}
}

// tableValue converts the Lua table at index to its Go representation.
// Sequences (keys 1..n) become slices, everything else becomes a map keyed
// by the string form of the key, so numeric and mixed keys are fine.
func tableValue(l *lua.State, index int) any {
	index = l.AbsIndex(index)
	length := l.RawLength(index)
	sequence := make([]any, length)
	entries := map[string]any{}
	sequential := true

	l.PushNil()
	for l.Next(index) {
		value := goValue(l, -1)

		// ToString converts numbers in place, which would invalidate the
		// traversal, so stringify a copy of the key
		l.PushValue(-2)
		key, _ := l.ToString(-1)
		l.Pop(1)

		if sequential {
			position := 0
			if l.TypeOf(-2) == lua.TypeNumber {
				number, _ := l.ToNumber(-2)
				if float64(int(number)) == number {
					position = int(number)
				}
			}
			if position >= 1 && position <= length {
				sequence[position-1] = value
			} else {
				sequential = false
			}
		}
		entries[key] = value
		l.Pop(1)
	}

	if sequential && len(entries) == length {
		return sequence
	}
	return entries
}

// protectedTableValue pulls the table at index from outside a Lua call, so
// traversal errors surface as errors instead of escaping as panics.
func protectedTableValue(l *lua.State, index int) (value any, err error) {
	index = l.AbsIndex(index)
	l.PushGoFunction(func(l *lua.State) int {
		value = tableValue(l, 1)
		return 0
	})
	l.PushValue(index)
	if err := l.ProtectedCall(1, 0, 0); err != nil {
		return nil, fmt.Errorf("pulling table : %w", err)
	}
	return value, nil
}

// asMap normalizes a pulled table to a map. Empty Lua tables pull as empty
// slices and are treated as empty maps.
func asMap(val any) map[string]any {
	switch v := val.(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) == 0 {
			return map[string]any{}
		}
	}
	return nil
}

// RegisterSiteType registers the `site` type and its methods with the Lua
// state. This allows hooks to read and update persisted site settings.
func RegisterSiteType(runtime *Runtime) {
	funcs := map[string]lua.Function{
		"get": func(l *lua.State) int {
			repo, ok := l.ToUserData(1).(domain.SiteRepository)
			if !ok {
				l.PushString("Invalid site")
				return 1
			}
			key := lua.CheckString(l, 2)
			value, err := repo.GetSetting(key)
			if err != nil {
				l.PushNil()
				return 1
			}
			l.PushString(value)
			return 1
		},
		"set": func(l *lua.State) int {
			repo, ok := l.ToUserData(1).(domain.SiteRepository)
			if !ok {
				l.PushString("Invalid site")
				return 1
			}
			key := lua.CheckString(l, 2)
			value := lua.CheckString(l, 3)
			if err := repo.SetSetting(key, value); err != nil {
				lua.Errorf(l, "setting %s : %s", key, err.Error())
				return 0
			}
			l.PushBoolean(true)
			return 1
		},
	}

	RegisterType(runtime.LuaState, "site", funcs, func(l *lua.State) int {
		repo, ok := l.ToUserData(1).(domain.SiteRepository)
		if !ok {
			l.PushString("Invalid site")
			return 1
		}
		settings, err := repo.GetSettings()
		if err != nil {
			l.PushString("Site { }")
			return 1
		}
		l.PushString(fmt.Sprintf("Site { Settings: %d }", len(settings)))
		return 1
	})
}

// RegisterType creates a new metatable in the Lua state and associates it with a name.
// It registers a set of functions as methods for the type and a `__tostring` metamethod.
// This is a generic helper for exposing Go types to Lua.
func RegisterType(l *lua.State, name string, functions map[string]lua.Function, toString func(l *lua.State) int) {
	lua.NewMetaTable(l, name)
	l.PushGoFunction(FunctionIndex(functions))
	l.SetField(-2, "__index")
	l.PushGoFunction(toString)
	l.SetField(-2, "__tostring")
	l.Pop(1)
}

// FunctionIndex returns a Lua function that acts as an `__index` metamethod.
// It looks up a field name in the provided functions map and pushes the corresponding
// function onto the stack if found.
func FunctionIndex(functions map[string]lua.Function) func(l *lua.State) int {
	return func(l *lua.State) int {
		field := lua.CheckString(l, 2)
		if function, ok := functions[field]; ok {
			l.PushGoFunction(function)
		} else {
			l.PushNil()
		}
		return 1
	}
}

// RegisterCustomPrint redirects the Lua print function into the runtime's
// captured log.
func RegisterCustomPrint(runtime *Runtime) {
	printFunc := func(l *lua.State) int {
		n := l.Top()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			if l.IsString(i) {
				parts = append(parts, lua.CheckString(l, i))
			} else if l.IsUserData(i) {
				if str, ok := lua.ToStringMeta(l, i); ok {
					parts = append(parts, str)
				} else {
					parts = append(parts, fmt.Sprintf("%v", l.ToValue(i)))
				}
			} else {
				parts = append(parts, fmt.Sprintf("%v", goValue(l, i)))
			}
		}
		message := strings.Join(parts, "\t")
		logEntry := HookLog{Time: time.Now(), Text: message}
		runtime.Logs = append(runtime.Logs, logEntry)
		err := runtime.OnLog(logEntry)
		if err != nil {
			log.Print(err)
		}
		return 0
	}
	runtime.LuaState.Register("print", printFunc)
}
