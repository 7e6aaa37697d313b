package billing

// State is a step of the invoice commit sequence.
type State int

const (
	// StateIdle: nothing written. An empty cart never leaves this state.
	StateIdle State = iota
	// StateHeaderWrite: the invoice header insert is in flight.
	StateHeaderWrite
	// StateLinesWrite: the header exists; line inserts are in flight.
	StateLinesWrite
	// StateCommitted: header and lines are stored and the cart was cleared.
	StateCommitted
	// StateFailed: a write failed. The cart is preserved for retry.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeaderWrite:
		return "header_write"
	case StateLinesWrite:
		return "lines_write"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
