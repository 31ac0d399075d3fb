package hooks

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/core"
)

// registerVellumLibrary registers the `vellum` global library and its
// sub-libraries into the Lua state. This is the main entry point for exposing
// the application's functionality to hook scripts.
func registerVellumLibrary(l *lua.State, service Service) {
	funcs := []lua.RegistryFunction{
		// log writes a message to the application's log.
		//
		// @param message string The message to log.
		// @param level string (optional) The log level (e.g., "INFO", "WARN", "ERROR").
		// Defaults to "INFO".
		{Name: "log", Function: func(l *lua.State) int {
			message := lua.CheckString(l, 2)
			level := lua.OptString(l, 3, "INFO")
			if hookID := getHookID(l); hookID != uuid.Nil {
				err := service.WriteLog(level, message, core.LogWithHookID(hookID))
				if err != nil {
					lua.Errorf(l, fmt.Sprintf("writing log : %s", err.Error()))
					return 0
				}
			} else {
				err := service.WriteLog(level, message)
				if err != nil {
					lua.Errorf(l, fmt.Sprintf("writing log : %s", err.Error()))
					return 0
				}
			}
			return 0
		}},
		// config returns the path to the application's configuration directory.
		//
		// @return string The configuration directory path.
		{Name: "config", Function: func(l *lua.State) int {
			config, err := service.GetConfigDir()
			if err != nil {
				l.PushString("")
				return 1
			}
			l.PushString(config)
			return 1
		}},
		// site returns the persisted site settings store.
		//
		// @return Site The site settings object.
		{Name: "site", Function: func(l *lua.State) int {
			repo, err := service.GetSiteRepo()
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("getting site repo : %s", err.Error()))
				return 0
			}
			l.PushUserData(repo)
			lua.SetMetaTableNamed(l, "site")
			return 1
		}},
	}

	lua.NewLibrary(l, funcs)
	l.SetGlobal("vellum")

	registerSettingsLibrary(l, service)
	registerEncodingLibrary(l)
	registerCryptoLibrary(l)
	registerUtilsLibrary(l)
	registerStringsLibrary(l)
	registerRandomLibrary(l)
}
