package hooks

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
	"github.com/google/uuid"
)

func registerSettingsLibrary(l *lua.State, service Service) {
	l.Global("vellum")

	if l.IsNil(-1) {
		l.Pop(1)
		return
	}

	lua.NewLibrary(l, settingsLibrary(service))

	l.SetField(-2, "settings")

	l.Pop(1)
}

// settingsLibrary returns a list of Lua functions for managing hook
// settings. These functions are available under the `vellum.settings` table
// in Lua scripts.
func settingsLibrary(service Service) []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// get returns the settings for the current hook.
		//
		// @return table The hook's settings as a Lua table.
		{Name: "get", Function: func(l *lua.State) int {
			repo, err := service.GetHookRepo()
			if err != nil {
				lua.Errorf(l, "getting hook repo: %s", err.Error())
				return 0
			}

			hookID := getHookID(l)
			if hookID == uuid.Nil {
				lua.Errorf(l, "hook ID is nil")
				return 0
			}

			settings, err := repo.GetHookSettingsByUUID(hookID)
			if err != nil {
				lua.Errorf(l, "getting hook %s settings: %s", hookID, err.Error())
				return 0
			}

			util.DeepPush(l, settings)
			return 1
		}},
		// set updates the settings for the current hook.
		//
		// @param settings table The new settings for the hook.
		// @return boolean True if the settings were updated successfully.
		{Name: "set", Function: func(l *lua.State) int {
			val := goValue(l, 2)

			// empty tables in lua are cast as []any, need to convert this to map
			settingsMap := asMap(val)
			if settingsMap == nil {
				lua.Errorf(l,
					fmt.Sprintf("getting table(map) got: %T", val),
				)
				return 0
			}

			repo, err := service.GetHookRepo()
			if err != nil {
				lua.Errorf(l, "getting hook repo: %s", err.Error())
				return 0
			}

			hookID := getHookID(l)
			if hookID == uuid.Nil {
				lua.Errorf(l, "hook ID is nil")
				return 0
			}

			err = repo.SetHookSettingsByUUID(hookID, settingsMap)
			if err != nil {
				lua.Errorf(l, "updating settings for hook %s: %s", hookID.String(), err.Error())
				return 0
			}

			l.PushBoolean(true)
			return 1
		}},
	}
}
