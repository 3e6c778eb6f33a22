package config

import "fmt"

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateClusterConfig validates a ClusterConfig, returning every
// problem found rather than stopping at the first; an empty slice
// means the configuration is usable. Callers should treat any
// non-empty result as fatal at startup.
func ValidateClusterConfig(c *ClusterConfig) []error {
	var errs []error

	if c.NodeID == 0 {
		errs = append(errs, ValidationError{Field: "node_id", Message: "must be non-zero"})
	}
	if c.ListenControl == "" {
		errs = append(errs, ValidationError{Field: "listen_control", Message: "must not be empty"})
	}
	if c.ListenData == "" {
		errs = append(errs, ValidationError{Field: "listen_data", Message: "must not be empty"})
	}
	if len(c.Peers) == 0 {
		errs = append(errs, ValidationError{Field: "peers", Message: "must list at least one peer"})
	}
	for _, p := range c.Peers {
		if p.NodeID == 0 {
			errs = append(errs, ValidationError{Field: "peers[].node_id", Message: "must be non-zero"})
		}
		if p.Control == "" {
			errs = append(errs, ValidationError{Field: "peers[].control", Message: "must not be empty"})
		}
	}
	if c.TimeoutInterval <= 0 {
		errs = append(errs, ValidationError{Field: "timeout_interval", Message: "must be positive"})
	}
	if c.FragmentLimit <= 0 {
		errs = append(errs, ValidationError{Field: "fragment_limit", Message: "must be positive"})
	}
	if c.DataDir == "" {
		errs = append(errs, ValidationError{Field: "data_dir", Message: "must not be empty"})
	}
	if c.AckQuorum < 0 || c.AckQuorum > len(c.Peers)+1 {
		errs = append(errs, ValidationError{Field: "ack_quorum", Message: "must be between 0 and cluster size"})
	}
	return errs
}

// ValidateLibraryConfig validates a LibraryConfig the same way.
func ValidateLibraryConfig(c *LibraryConfig) []error {
	var errs []error

	if c.LibraryID == 0 {
		errs = append(errs, ValidationError{Field: "library_id", Message: "must be non-zero"})
	}
	if c.Listen == "" {
		errs = append(errs, ValidationError{Field: "listen", Message: "must not be empty"})
	}
	if len(c.Channels) == 0 {
		errs = append(errs, ValidationError{Field: "channels", Message: "must list at least one engine channel"})
	}
	for _, ch := range c.Channels {
		if ch.Name == "" {
			errs = append(errs, ValidationError{Field: "channels[].name", Message: "must not be empty"})
		}
		if ch.Address == "" {
			errs = append(errs, ValidationError{Field: "channels[].address", Message: "must not be empty"})
		}
	}
	if c.ReplyTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "reply_timeout", Message: "must be positive"})
	}
	if c.ReconnectAttempts <= 0 {
		errs = append(errs, ValidationError{Field: "reconnect_attempts", Message: "must be positive"})
	}
	return errs
}
