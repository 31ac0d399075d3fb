// Package hooks provides the Lua-based content hook system for Vellum.
// It includes the runtime for executing Lua scripts and defines the Go
// functions and types that are exposed to the Lua environment, allowing
// hooks to rewrite pages before they are saved or rendered.
package hooks
