package consensus

import "errors"

// Consensus errors, matching the taxonomy of recoverable vs. fatal
// kinds. Only ErrMalformedControl (from the control-frame decoders) and
// ErrConfigInvalid (from AgentConfig.Validate and NewClusterAgent) are
// returned by this package; the roles handle the other conditions
// internally and no function returns those values.
var (
	// ErrMalformedControl is returned when a control frame has an
	// unknown type tag or the wrong declared length. The frame is
	// dropped; the role continues.
	ErrMalformedControl = errors.New("consensus: malformed control frame")

	// ErrStale is returned when a control message carries a term below
	// the receiver's current term. Dropped silently.
	ErrStale = errors.New("consensus: stale term")

	// ErrBackPressured is returned when a publication could not enqueue
	// a message; the caller should mark it for resend on the next poll.
	ErrBackPressured = errors.New("consensus: back pressured")

	// ErrTimeout is returned when a leader heartbeat gap or a library
	// reply deadline elapses.
	ErrTimeout = errors.New("consensus: timeout")

	// ErrQuorumLost indicates the leader cannot currently reach a
	// quorum of acknowledgements; it remains leader and commitPosition
	// simply stalls. No data is lost.
	ErrQuorumLost = errors.New("consensus: quorum lost")

	// ErrConfigInvalid is returned when mandatory configuration is
	// missing at construction. Fatal at startup.
	ErrConfigInvalid = errors.New("consensus: invalid configuration")

	// ErrTransportUnavailable is returned when the underlying transport
	// is gone. Fatal; the agent should close.
	ErrTransportUnavailable = errors.New("consensus: transport unavailable")
)
