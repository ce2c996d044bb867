package types

// ------------------------
// Boot state (retained, boot/<core>/state)
// ------------------------

// BootReport is the retained outcome of one core's boot sequence.
type BootReport struct {
	Core      int      `json:"core"`
	State     string   `json:"state"` // "in_progress", "complete", "halted"
	Relocated bool     `json:"relocated"`
	TickArmed bool     `json:"tick_armed"`
	VTOR      uint32   `json:"vtor"`
	Steps     []string `json:"steps"`           // executed, in order
	Error     string   `json:"error,omitempty"` // errcode string when halted
}

// ------------------------
// Secondary cores (retained, core/<id>/launch)
// ------------------------

// CoreLaunch records a secondary core released from reset.
type CoreLaunch struct {
	Core  int    `json:"core"`
	VTOR  uint32 `json:"vtor"`
	Debug bool   `json:"debug"`
}
