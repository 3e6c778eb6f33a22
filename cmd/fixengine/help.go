package main

import "io"

func printUsage(w io.Writer) {
	io.WriteString(w, `fixengine - replicated FIX session cluster node

Usage:
  fixengine <command> [arguments]

Commands:
  serve     Run the cluster agent until terminated
  status    Query a running node's status over its control socket
  version   Print version information
  help      Show this message

Run 'fixengine <command> -h' for command-specific flags.
`)
}

func printServeUsage(w io.Writer) {
	io.WriteString(w, `Usage: fixengine serve -config <path>

Loads a ClusterConfig from path and runs the cluster agent's poll
loop until SIGINT/SIGTERM.

Flags:
  -config string   Path to the cluster config file (required)
`)
}

func printStatusUsage(w io.Writer) {
	io.WriteString(w, `Usage: fixengine status -socket <path>

Connects to a running node's control socket and prints its current
StatusSnapshot.

Flags:
  -socket string   Path to the control socket (required)
`)
}
