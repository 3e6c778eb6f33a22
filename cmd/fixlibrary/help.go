package main

import "io"

func printUsage(w io.Writer) {
	io.WriteString(w, `fixlibrary - engine connection client for FIX libraries

Usage:
  fixlibrary <command> [arguments]

Commands:
  serve     Connect to a configured engine channel and stay connected
  version   Print version information
  help      Show this message

Run 'fixlibrary <command> -h' for command-specific flags.
`)
}

func printServeUsage(w io.Writer) {
	io.WriteString(w, `Usage: fixlibrary serve -config <path>

Loads a LibraryConfig from path and runs the LibraryPoller's connect
loop until SIGINT/SIGTERM, following NotLeader redirects across the
configured engine channels.

Flags:
  -config string   Path to the library config file (required)
`)
}
