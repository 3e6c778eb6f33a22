package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parser errors.
var (
	ErrFileNotFound    = errors.New("configuration file not found")
	ErrUnexpectedLine  = errors.New("unexpected configuration line")
	ErrInvalidDuration = errors.New("invalid duration format")
	ErrInvalidNumber   = errors.New("invalid number format")
	ErrInvalidPeer     = errors.New("invalid peer specification")
	ErrInvalidChannel  = errors.New("invalid channel specification")
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR} and ${VAR:-default} references
// with the named environment variable, or the default when unset.
func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		content := string(match[2 : len(match)-1])
		if idx := strings.Index(content, ":-"); idx != -1 {
			name, def := content[:idx], content[idx+2:]
			if val := os.Getenv(name); val != "" {
				return []byte(val)
			}
			return []byte(def)
		}
		return []byte(os.Getenv(content))
	})
}

// parseKeyValue reads a flat `key = value` file, one setting per line.
// Blank lines and lines starting with # are ignored.
func parseKeyValue(data []byte) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedLine, line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		values[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func parseDuration(values map[string]string, key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := values[key]
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, raw)
	}
	return d, nil
}

func parseInt(values map[string]string, key string, fallback int) (int, error) {
	raw, ok := values[key]
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, raw)
	}
	return n, nil
}

func parseInt64(values map[string]string, key string, fallback int64) (int64, error) {
	raw, ok := values[key]
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, raw)
	}
	return n, nil
}

// LoadClusterConfig reads and parses a ClusterConfig from path.
func LoadClusterConfig(path string) (*ClusterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return ParseClusterConfig(data)
}

// ParseClusterConfig parses a ClusterConfig from key=value data,
// substituting environment variables first and filling unset fields
// from DefaultClusterConfig.
func ParseClusterConfig(data []byte) (*ClusterConfig, error) {
	data = substituteEnvVars(data)
	values, err := parseKeyValue(data)
	if err != nil {
		return nil, err
	}

	cfg := DefaultClusterConfig()

	nodeID, err := parseInt(values, "node_id", 0)
	if err != nil {
		return nil, err
	}
	cfg.NodeID = int16(nodeID)

	if raw, ok := values["listen_control"]; ok && raw != "" {
		cfg.ListenControl = raw
	}
	if raw, ok := values["listen_data"]; ok && raw != "" {
		cfg.ListenData = raw
	}

	if raw, ok := values["peers"]; ok && raw != "" {
		peers, err := parsePeers(raw)
		if err != nil {
			return nil, err
		}
		cfg.Peers = peers
	}

	if cfg.TimeoutInterval, err = parseDuration(values, "timeout_interval", cfg.TimeoutInterval); err != nil {
		return nil, err
	}
	if cfg.FragmentLimit, err = parseInt(values, "fragment_limit", cfg.FragmentLimit); err != nil {
		return nil, err
	}
	if raw, ok := values["data_dir"]; ok && raw != "" {
		cfg.DataDir = raw
	}
	if cfg.AckQuorum, err = parseInt(values, "ack_quorum", cfg.AckQuorum); err != nil {
		return nil, err
	}
	if cfg.SnapshotThreshold, err = parseInt64(values, "snapshot_threshold", cfg.SnapshotThreshold); err != nil {
		return nil, err
	}
	if raw, ok := values["log_level"]; ok && raw != "" {
		cfg.Logging.Level = raw
	}
	if raw, ok := values["log_format"]; ok && raw != "" {
		cfg.Logging.Format = raw
	}

	return cfg, nil
}

// parsePeers parses "id@control|data, id@control|data, ...".
func parsePeers(raw string) ([]PeerAddr, error) {
	var peers []PeerAddr
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		at := strings.Index(item, "@")
		if at < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeer, item)
		}
		idPart, addrPart := item[:at], item[at+1:]
		id, err := strconv.Atoi(idPart)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeer, item)
		}
		control, data, ok := strings.Cut(addrPart, "|")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeer, item)
		}
		peers = append(peers, PeerAddr{NodeID: int16(id), Control: control, Data: data})
	}
	return peers, nil
}

// LoadLibraryConfig reads and parses a LibraryConfig from path.
func LoadLibraryConfig(path string) (*LibraryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return ParseLibraryConfig(data)
}

// ParseLibraryConfig parses a LibraryConfig from key=value data.
func ParseLibraryConfig(data []byte) (*LibraryConfig, error) {
	data = substituteEnvVars(data)
	values, err := parseKeyValue(data)
	if err != nil {
		return nil, err
	}

	cfg := DefaultLibraryConfig()

	libraryID, err := parseInt64(values, "library_id", 0)
	if err != nil {
		return nil, err
	}
	cfg.LibraryID = uint64(libraryID)

	if raw, ok := values["listen"]; ok && raw != "" {
		cfg.Listen = raw
	}

	if raw, ok := values["channels"]; ok && raw != "" {
		channels, err := parseChannels(raw)
		if err != nil {
			return nil, err
		}
		cfg.Channels = channels
	}

	if cfg.ReplyTimeout, err = parseDuration(values, "reply_timeout", cfg.ReplyTimeout); err != nil {
		return nil, err
	}
	if cfg.ReconnectAttempts, err = parseInt(values, "reconnect_attempts", cfg.ReconnectAttempts); err != nil {
		return nil, err
	}
	if raw, ok := values["log_level"]; ok && raw != "" {
		cfg.Logging.Level = raw
	}
	if raw, ok := values["log_format"]; ok && raw != "" {
		cfg.Logging.Format = raw
	}

	return cfg, nil
}

// parseChannels parses "name@address, name@address, ...".
func parseChannels(raw string) ([]LibraryChannel, error) {
	var channels []LibraryChannel
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, addr, ok := strings.Cut(item, "@")
		if !ok || name == "" || addr == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, item)
		}
		channels = append(channels, LibraryChannel{Name: name, Address: addr})
	}
	return channels, nil
}
