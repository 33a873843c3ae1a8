// Package testhook lets containertest reach the container's process-wide
// state. Package container fills the hooks from its init.
package testhook

var (
	// ResetApplication discards the application singleton.
	ResetApplication func()

	// UnregisterModule removes a module from the catalog.
	UnregisterModule func(name string)
)
