package stream

import "fmt"

// State is the lifecycle state of an Encoder
type State int

const (
	StateCreated State = iota
	// StateHeaderWritten is transient: Start moves on to StateStreaming
	// as soon as the IHDR chunk is out
	StateHeaderWritten
	StateStreaming
	StateFinalizing
	StateClosed
	// StateFailed is terminal; entered on any sink or compressor error
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateHeaderWritten:
		return "header-written"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
