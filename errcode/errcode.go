package errcode

// Code is a stable error identifier shared by the vector, boot, dispatch and
// multicore packages. It is a string newtype, comparable, allocation-free,
// and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Programming errors. Returned to the caller, never clamped or ignored.
const (
	OK               Code = "ok"
	InvalidIndex     Code = "invalid_index"
	InvalidParams    Code = "invalid_params"
	NotRelocated     Code = "not_relocated"
	AlreadyRelocated Code = "already_relocated"
	AlreadyPlaced    Code = "already_placed"
	AlreadyStarted   Code = "already_started"
	BootStarted      Code = "boot_started"
	UnknownCore      Code = "unknown_core"
	UnknownChip      Code = "unknown_chip"
	Timeout          Code = "timeout"
)

// Boot-time conditions. Everything here except NoRegion stops boot.
const (
	Misaligned       Code = "misaligned"
	RegionTooSmall   Code = "region_too_small"
	UnsupportedClock Code = "unsupported_clock"
	StepFailed       Code = "step_failed"

	// NoRegion: the memory map offers no writable region for the table.
	NoRegion Code = "no_region"
)

const Error Code = "error" // generic fallback

// E keeps the operation and an optional cause next to the code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += " (" + e.Err.Error() + ")"
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.X) match a wrapped code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E without a cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around a cause. A nil cause yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Fatal reports whether a code stops boot.
func Fatal(c Code) bool {
	switch c {
	case Misaligned, RegionTooSmall, UnsupportedClock, StepFailed:
		return true
	}
	return false
}
