package hooks

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/domain"
)

func TestRuntime_Sandbox(t *testing.T) {
	restrictedGlobals := []string{
		"os",
		"io",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"require",
		"package",
		"debug",
		"collectgarbage",
	}

	for _, global := range restrictedGlobals {
		t.Run(fmt.Sprintf("%s should be nil", global), func(t *testing.T) {
			hook, _ := setupTestHook(t, "")

			luaCode := fmt.Sprintf(`
				if %s == nil then return "nil" end
				return "exists"
			`, global)

			err := hook.ExecuteLua(luaCode)
			if err != nil {
				t.Fatalf("executing lua code %s : %v", luaCode, err)
			}

			val := goValue(hook.LuaState, -1)
			if val != "nil" {
				t.Errorf("\nwanted:\nnil\ngot:\n%v", val)
			}
		})
	}
}

func TestRuntime_LuaStandardLibraries(t *testing.T) {
	tests := []struct {
		name    string
		luaCode string
		want    any
	}{
		{
			name:    "math library should be available",
			luaCode: `return math.abs(-10)`,
			want:    10.0,
		},
		{
			name:    "table library should be available",
			luaCode: `local t = {1, 2, 3}; return table.concat(t, "-")`,
			want:    "1-2-3",
		},
		{
			name:    "string library should be available",
			luaCode: `return string.upper("vellum")`,
			want:    "VELLUM",
		},
		{
			name:    "bit32 library should be available",
			luaCode: `return bit32.band(10, 2)`,
			want:    2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook, _ := setupTestHook(t, "")

			err := hook.ExecuteLua(tt.luaCode)
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}

			got := goValue(hook.LuaState, -1)
			if got != tt.want {
				t.Errorf("\nwanted:\n%v\ngot:\n%v", tt.want, got)
			}
		})
	}
}

func TestRuntime_TableValues(t *testing.T) {
	t.Run("should convert sequences to lists", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")

		err := hook.ExecuteLua(`return {"a", "b", "c"}`)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(hook.LuaState, -1)
		want := []any{"a", "b", "c"}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should convert mixed key tables to maps", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")

		err := hook.ExecuteLua(`return {name = "vellum", [1] = "first", [2] = "second"}`)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(hook.LuaState, -1)
		want := map[string]any{"name": "vellum", "1": "first", "2": "second"}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should convert nested tables", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")

		err := hook.ExecuteLua(`return {tags = {"intro", "meta"}, count = 2}`)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got := goValue(hook.LuaState, -1)
		want := map[string]any{"tags": []any{"intro", "meta"}, "count": 2.0}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})
}

func TestRuntime_ExecuteLua(t *testing.T) {
	t.Run("should execute valid lua code", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")
		err := hook.ExecuteLua(`print("hello")`)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
	})

	t.Run("should return error on invalid lua code", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")
		err := hook.ExecuteLua(`invalid syntax`)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func testPage() *domain.Page {
	return &domain.Page{
		ID:    uuid.MustParse("01990001-0000-7000-8000-00000000aaaa"),
		Slug:  "hello-world",
		Title: "Hello World",
		Body:  "<p>Copyright (c) Vellum</p>",
		Tags:  []string{"intro", "meta"},
	}
}

func TestRuntime_CallPage(t *testing.T) {
	t.Run("should rewrite the page when the function returns a table", func(t *testing.T) {
		luaCode := `
			function on_render(page)
				page.body = vellum.strings:replace(page.body, "(c)", "&copy;")
				return page
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		got, err := hook.CallPage("on_render", testPage())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		want := "<p>Copyright &copy; Vellum</p>"
		if got.Body != want {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", want, got.Body)
		}
	})

	t.Run("should leave the original page untouched", func(t *testing.T) {
		luaCode := `
			function on_save(page)
				page.title = "rewritten"
				return page
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		original := testPage()
		got, err := hook.CallPage("on_save", original)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if original.Title != "Hello World" {
			t.Errorf("\nwanted:\nHello World\ngot:\n%v", original.Title)
		}
		if got.Title != "rewritten" {
			t.Errorf("\nwanted:\nrewritten\ngot:\n%v", got.Title)
		}
	})

	t.Run("should be a no-op when the function is missing", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")

		page := testPage()
		got, err := hook.CallPage("on_render", page)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != page {
			t.Errorf("\nwanted:\nsame page\ngot:\n%v", got)
		}
	})

	t.Run("should be a no-op when the function returns nil", func(t *testing.T) {
		luaCode := `
			function on_save(page)
				return nil
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		page := testPage()
		got, err := hook.CallPage("on_save", page)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != page {
			t.Errorf("\nwanted:\nsame page\ngot:\n%v", got)
		}
	})

	t.Run("should not let hooks rewrite the page id", func(t *testing.T) {
		luaCode := `
			function on_save(page)
				page.id = "not-a-uuid"
				return page
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		page := testPage()
		got, err := hook.CallPage("on_save", page)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.ID != page.ID {
			t.Errorf("\nwanted:\n%v\ngot:\n%v", page.ID, got.ID)
		}
	})

	t.Run("should rewrite the tags", func(t *testing.T) {
		luaCode := `
			function on_save(page)
				page.tags = {"rewritten"}
				return page
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		got, err := hook.CallPage("on_save", testPage())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got.Tags) != 1 || got.Tags[0] != "rewritten" {
			t.Errorf("\nwanted:\n[rewritten]\ngot:\n%v", got.Tags)
		}
	})

	t.Run("should return an error when the function errors", func(t *testing.T) {
		luaCode := `
			function on_save(page)
				error("boom")
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		_, err := hook.CallPage("on_save", testPage())
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should return an error when the function returns a non-table", func(t *testing.T) {
		luaCode := `
			function on_save(page)
				return "nope"
			end
		`
		hook, _ := setupTestHook(t, luaCode)

		_, err := hook.CallPage("on_save", testPage())
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestRuntime_CustomPrint(t *testing.T) {
	t.Run("print should be captured into the runtime logs", func(t *testing.T) {
		hook, _ := setupTestHook(t, "")

		err := hook.ExecuteLua(`print("hello", "vellum")`)
		if err != nil {
			t.Fatalf("executing lua: %v", err)
		}

		if len(hook.Logs) != 1 {
			t.Fatalf("\nwanted:\n1 log\ngot:\n%d", len(hook.Logs))
		}
		if hook.Logs[0].Text != "hello\tvellum" {
			t.Errorf("\nwanted:\nhello\tvellum\ngot:\n%v", hook.Logs[0].Text)
		}
	})

	t.Run("print should call the log handler", func(t *testing.T) {
		var captured string
		handler := func(entry HookLog) error {
			captured = entry.Text
			return nil
		}
		hook, _ := setupTestHook(t, "", WithLogHandler(handler))

		err := hook.ExecuteLua(`print("handled")`)
		if err != nil {
			t.Fatalf("executing lua: %v", err)
		}
		if captured != "handled" {
			t.Errorf("\nwanted:\nhandled\ngot:\n%v", captured)
		}
	})
}
