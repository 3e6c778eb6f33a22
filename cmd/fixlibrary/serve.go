package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/config"
	"github.com/KilimcininKorOglu/fixcluster/internal/idle"
	"github.com/KilimcininKorOglu/fixcluster/internal/library"
	"github.com/KilimcininKorOglu/fixcluster/internal/logging"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

func serveCmd(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to the library config file")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printServeUsage(os.Stdout)
		return 0
	}
	if *configPath == "" {
		printServeUsage(os.Stderr)
		return 1
	}

	cfg, err := config.LoadLibraryConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if errs := config.ValidateLibraryConfig(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", e)
		}
		return 1
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	}).WithFields("library_id", cfg.LibraryID)

	poller, closeConn, err := buildPoller(cfg, log)
	if err != nil {
		log.Error("build poller", "err", err)
		return 1
	}
	defer closeConn()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("fixlibrary connecting", "channels", len(cfg.Channels))

	idleStrategy := idle.NewBackoffStrategy()
	wasConnected := false

	for {
		select {
		case sig := <-sigCh:
			log.Info("shutting down", "signal", sig.String())
			return 0
		default:
		}

		if err := poller.Poll(64, time.Now()); err != nil {
			log.Error("unable to connect to any engine channel", "err", err)
			return 1
		}

		if connected := poller.Connected(); connected != wasConnected {
			log.Info("connection state changed", "connected", connected, "channel", poller.CurrentChannel())
			wasConnected = connected
		}

		idleStrategy.Idle(0)
	}
}

// buildPoller wires a LibraryPoller from cfg: one local UDP socket
// receiving from every configured engine channel, and one
// point-to-point UDPPublication per channel addressed at that
// channel's remote endpoint.
func buildPoller(cfg *config.LibraryConfig, log logging.Logger) (*library.LibraryPoller, func(), error) {
	listenAddr, err := net.ResolveUDPAddr("udp", cfg.Listen)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve listen: %w", err)
	}
	conn, err := net.ListenUDP("udp", listenAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen: %w", err)
	}

	sub := transport.NewUDPSubscription(conn)
	selfID := int32(cfg.LibraryID)

	channels := make([]library.Channel, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		remote, err := net.ResolveUDPAddr("udp", ch.Address)
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("resolve channel %s: %w", ch.Name, err)
		}
		channels = append(channels, library.Channel{
			Name: ch.Name,
			Pub:  transport.NewUDPPublication(conn, remote, selfID),
			Sub:  sub,
		})
	}

	poller, err := library.NewLibraryPoller(library.PollerConfig{
		LibraryID:         cfg.LibraryID,
		Channels:          channels,
		ReplyTimeout:      cfg.ReplyTimeout,
		ReconnectAttempts: cfg.ReconnectAttempts,
		Log:               log,
	})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("construct poller: %w", err)
	}

	return poller, func() { conn.Close() }, nil
}
