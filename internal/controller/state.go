// Package controller streams color-command packets to a connected
// microphone and keeps the stream alive across transport failures.
package controller

// State is the transmission lifecycle state. Connecting is initial,
// ShuttingDown is terminal.
type State int32

const (
	Connecting State = iota
	Streaming
	TearingDown
	Reconnecting
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case TearingDown:
		return "tearing-down"
	case Reconnecting:
		return "reconnecting"
	case ShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}
