package hooks

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/Shopify/go-lua"
)

func registerCryptoLibrary(l *lua.State) {
	l.Global("vellum")

	if l.IsNil(-1) {
		l.Pop(1)
		return
	}

	lua.NewLibrary(l, cryptoLibrary())

	l.SetField(-2, "crypto")

	l.Pop(1)
}

// digest wraps a hash constructor as a Lua function that hashes its string
// argument and returns the hex form.
func digest(algorithm func() hash.Hash) lua.Function {
	return func(l *lua.State) int {
		inputString := lua.CheckString(l, 2)

		h := algorithm()
		h.Write([]byte(inputString))
		l.PushString(hex.EncodeToString(h.Sum(nil)))
		return 1
	}
}

// cryptoLibrary returns the hashing functions available under the
// `vellum.crypto` table in Lua scripts: md5 (gravatar-style avatar URLs),
// sha256, and hmac_sha256 for signing outgoing payloads.
func cryptoLibrary() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "md5", Function: digest(md5.New)},
		{Name: "sha256", Function: digest(sha256.New)},
		// hmac_sha256 authenticates a message with a secret key.
		//
		// @param secret string The secret key.
		// @param message string The message to authenticate.
		// @return string The HMAC-SHA256 encoded as a hexadecimal string.
		{Name: "hmac_sha256", Function: func(l *lua.State) int {
			secret := lua.CheckString(l, 2)
			message := lua.CheckString(l, 3)

			mac := hmac.New(sha256.New, []byte(secret))
			mac.Write([]byte(message))

			l.PushString(hex.EncodeToString(mac.Sum(nil)))
			return 1
		}},
	}
}
