// Package config provides configuration loading and validation for the
// fixengine and fixlibrary processes.
//
// # Overview
//
// Each process loads one typed config struct (ClusterConfig or
// LibraryConfig) from a flat key=value file, with ${VAR} / ${VAR:-default}
// environment variable substitution applied before parsing. No
// third-party configuration library is used.
//
// # Example cluster config file
//
//	node_id = 1
//	listen_control = 127.0.0.1:7000
//	listen_data = 127.0.0.1:8000
//	peers = 2@127.0.0.1:7001|127.0.0.1:8001, 3@127.0.0.1:7002|127.0.0.1:8002
//	timeout_interval = 150ms
//	fragment_limit = 64
//	data_dir = /var/lib/fixengine/node1
//	snapshot_threshold = 1048576
//	log_level = info
//
// # Example library config file
//
//	library_id = 42
//	listen = 127.0.0.1:0
//	channels = a@127.0.0.1:9001, b@127.0.0.1:9002
//	reply_timeout = 5s
//	reconnect_attempts = 5
package config
