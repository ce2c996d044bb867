package platform

import "vectorcore-go/errcode"

var haltHook func(reason error)

// Halt stops the core for good: interrupts masked, waiting forever. It is
// the fail-safe for fatal boot conditions and unregistered interrupts.
//
// When a hook is installed (host tests), the hook is called instead and
// Halt returns.
func Halt(reason error) {
	if h := haltHook; h != nil {
		h(reason)
		return
	}
	halt()
}

// SetHaltHook installs an observable sentinel in place of the trap and
// returns a function restoring the previous one.
func SetHaltHook(fn func(reason error)) (restore func()) {
	prev := haltHook
	haltHook = fn
	return func() { haltHook = prev }
}

// Unhandled is the default entry for lines nobody registered a handler for.
// It traps rather than returning into code that expected a real handler.
func Unhandled() {
	Halt(errcode.New(errcode.Error, "platform.Unhandled", "unregistered interrupt"))
}
