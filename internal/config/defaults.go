package config

import "time"

// DefaultClusterConfig returns a ClusterConfig with sensible defaults;
// NodeID, ListenControl, ListenData, and Peers still require explicit
// configuration.
func DefaultClusterConfig() *ClusterConfig {
	return &ClusterConfig{
		TimeoutInterval:   150 * time.Millisecond,
		FragmentLimit:     64,
		DataDir:           "/var/lib/fixengine",
		AckQuorum:         0,
		SnapshotThreshold: 1 << 20,
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultLibraryConfig returns a LibraryConfig with sensible defaults;
// LibraryID, Listen, and Channels still require explicit configuration.
func DefaultLibraryConfig() *LibraryConfig {
	return &LibraryConfig{
		ReplyTimeout:      5 * time.Second,
		ReconnectAttempts: 5,
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
