package hooks

import (
	"math/rand/v2"

	"github.com/Shopify/go-lua"
)

// tokenCharset is the default alphabet for random:string.
const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func registerRandomLibrary(l *lua.State) {
	l.Global("vellum")

	if l.IsNil(-1) {
		l.Pop(1)
		return
	}

	lua.NewLibrary(l, randomLibrary())

	l.SetField(-2, "random")

	l.Pop(1)
}

// randomLibrary returns the random data functions available under the
// `vellum.random` table in Lua scripts. Hooks use these for sample content
// and cache-busting tokens, so the non-cryptographic source is fine.
func randomLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// int returns a random integer between min and max (inclusive).
		{Name: "int", Function: func(l *lua.State) int {
			min := lua.CheckInteger(l, 2)
			max := lua.CheckInteger(l, 3)

			if min > max {
				lua.ArgumentError(l, 2, "minimum value cannot be greater than max")
				return 0
			}

			l.PushInteger(min + rand.IntN(max-min+1))
			return 1
		}},
		// string returns a random string of the given length, drawn from an
		// optional charset (alphanumeric by default).
		{Name: "string", Function: func(l *lua.State) int {
			length := lua.CheckInteger(l, 2)
			charset := lua.OptString(l, 3, tokenCharset)

			if length <= 0 {
				l.PushString("")
				return 1
			}
			if len(charset) == 0 {
				lua.ArgumentError(l, 3, "charset cannot be empty")
				return 0
			}

			result := make([]byte, length)
			for i := range result {
				result[i] = charset[rand.IntN(len(charset))]
			}

			l.PushString(string(result))
			return 1
		}},
	}
}
