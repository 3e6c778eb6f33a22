package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/archive"
	"github.com/KilimcininKorOglu/fixcluster/internal/config"
	"github.com/KilimcininKorOglu/fixcluster/internal/consensus"
	"github.com/KilimcininKorOglu/fixcluster/internal/idle"
	"github.com/KilimcininKorOglu/fixcluster/internal/logging"
	"github.com/KilimcininKorOglu/fixcluster/internal/session"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

func serveCmd(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to the cluster config file")
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

	cfg, err := config.LoadClusterConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if errs := config.ValidateClusterConfig(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", e)
		}
		return 1
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	}).WithFields("node_id", cfg.NodeID)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Error("create data dir", "err", err)
		return 1
	}

	agent, closeAgent, err := buildAgent(cfg, log)
	if err != nil {
		log.Error("build agent", "err", err)
		return 1
	}
	defer closeAgent()

	ctrl, err := newControlServer(filepath.Join(cfg.DataDir, "control.sock"))
	if err != nil {
		log.Error("open control socket", "err", err)
		return 1
	}
	defer ctrl.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("fixengine serving",
		"listen_control", cfg.ListenControl,
		"listen_data", cfg.ListenData,
		"peers", len(cfg.Peers),
	)

	idleStrategy := idle.NewBackoffStrategy()
	lastRole := agent.Role()

	for {
		select {
		case sig := <-sigCh:
			log.Info("shutting down", "signal", sig.String())
			return 0
		default:
		}

		agent.Poll(time.Now())
		ctrl.poll(agent.Status())

		if role := agent.Role(); role != lastRole {
			log.Info("role changed", "role", role.String())
			lastRole = role
		}

		idleStrategy.Idle(0)
	}
}

// buildAgent wires a ClusterAgent from cfg: one UDP socket each for
// control and data, fanned out to every configured peer, an on-disk
// FileArchive under cfg.DataDir, and the node's own logger. The
// returned closer releases every OS resource opened here.
func buildAgent(cfg *config.ClusterConfig, log logging.Logger) (*consensus.ClusterAgent, func(), error) {
	controlAddr, err := net.ResolveUDPAddr("udp", cfg.ListenControl)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve listen_control: %w", err)
	}
	controlConn, err := net.ListenUDP("udp", controlAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen control: %w", err)
	}

	dataAddr, err := net.ResolveUDPAddr("udp", cfg.ListenData)
	if err != nil {
		controlConn.Close()
		return nil, nil, fmt.Errorf("resolve listen_data: %w", err)
	}
	dataConn, err := net.ListenUDP("udp", dataAddr)
	if err != nil {
		controlConn.Close()
		return nil, nil, fmt.Errorf("listen data: %w", err)
	}

	selfID := int32(cfg.NodeID)
	controlMembers := make([]transport.Publication, 0, len(cfg.Peers))
	dataMembers := make([]transport.Publication, 0, len(cfg.Peers))
	peers := make([]consensus.NodeId, 0, len(cfg.Peers))

	for _, p := range cfg.Peers {
		pControl, err := net.ResolveUDPAddr("udp", p.Control)
		if err != nil {
			controlConn.Close()
			dataConn.Close()
			return nil, nil, fmt.Errorf("resolve peer %d control addr: %w", p.NodeID, err)
		}
		pData, err := net.ResolveUDPAddr("udp", p.Data)
		if err != nil {
			controlConn.Close()
			dataConn.Close()
			return nil, nil, fmt.Errorf("resolve peer %d data addr: %w", p.NodeID, err)
		}
		controlMembers = append(controlMembers, transport.NewUDPPublication(controlConn, pControl, selfID))
		dataMembers = append(dataMembers, transport.NewUDPPublication(dataConn, pData, selfID))
		peers = append(peers, consensus.NodeId(p.NodeID))
	}

	controlPub := transport.NewFanoutPublication(selfID, controlMembers...)
	dataPub := transport.NewFanoutPublication(selfID, dataMembers...)
	controlSub := transport.NewUDPSubscription(controlConn)
	dataSub := transport.NewUDPSubscription(dataConn)

	fileArchive, err := archive.NewFileArchive(filepath.Join(cfg.DataDir, "segment.log"), 1<<16)
	if err != nil {
		controlConn.Close()
		dataConn.Close()
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}

	var ackStrategy consensus.AcknowledgementStrategy
	if cfg.AckQuorum > 0 {
		ackStrategy = fixedQuorumStrategy(cfg.AckQuorum)
	}

	agent, err := consensus.NewClusterAgent(consensus.AgentConfig{
		NodeID:            consensus.NodeId(cfg.NodeID),
		Peers:             peers,
		TimeoutInterval:   cfg.TimeoutInterval,
		FragmentLimit:     cfg.FragmentLimit,
		ControlPub:        controlPub,
		ControlSub:        controlSub,
		DataPub:           dataPub,
		DataSub:           dataSub,
		Archiver:          fileArchive,
		ArchiveReader:     fileArchive,
		SessionHandler:    session.NopSessionHandler{},
		Log:               log,
		AckStrategy:       ackStrategy,
		SnapshotThreshold: cfg.SnapshotThreshold,
	})
	if err != nil {
		fileArchive.Close()
		controlConn.Close()
		dataConn.Close()
		return nil, nil, fmt.Errorf("construct agent: %w", err)
	}

	closer := func() {
		fileArchive.Close()
		controlConn.Close()
		dataConn.Close()
	}
	return agent, closer, nil
}

// fixedQuorumStrategy builds an AcknowledgementStrategy requiring
// exactly k acknowledgements instead of consensus.QuorumStrategy's
// fixed simple-majority count, for operators who want a stronger
// (or, in a degraded cluster, weaker) durability bar than majority.
func fixedQuorumStrategy(k int) consensus.AcknowledgementStrategy {
	return func(self consensus.Position, peerPositions map[consensus.NodeId]consensus.Position, clusterSize int) consensus.Position {
		if clusterSize <= 0 {
			return self
		}
		positions := make([]consensus.Position, 0, clusterSize)
		positions = append(positions, self)
		for _, p := range peerPositions {
			positions = append(positions, p)
		}
		for len(positions) < clusterSize {
			positions = append(positions, 0)
		}
		sort.Slice(positions, func(i, j int) bool { return positions[i] > positions[j] })
		if k > len(positions) {
			k = len(positions)
		}
		return positions[k-1]
	}
}

// controlServer exposes a ClusterAgent's StatusSnapshot over a local
// Unix socket for the status subcommand, polled from the same
// goroutine as the agent so Status() is always called between poll
// iterations per the single-threaded discipline.
type controlServer struct {
	ln   *net.UnixListener
	path string
}

func newControlServer(path string) (*controlServer, error) {
	os.Remove(path)
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, err
	}
	return &controlServer{ln: ln, path: path}, nil
}

// poll accepts at most one pending connection, waiting at most about a
// millisecond for one, and writes status to it as a single JSON line.
func (s *controlServer) poll(status consensus.StatusSnapshot) {
	s.ln.SetDeadline(time.Now().Add(time.Millisecond))
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_ = json.NewEncoder(conn).Encode(status)
}

func (s *controlServer) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}
