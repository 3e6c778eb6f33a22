package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/consensus"
)

func statusCmd(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socketPath := fs.String("socket", "", "Path to the node's control socket")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printStatusUsage(os.Stdout)
		return 0
	}
	if *socketPath == "" {
		printStatusUsage(os.Stderr)
		return 1
	}

	conn, err := net.DialTimeout("unix", *socketPath, 2*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to %s: %v\n", *socketPath, err)
		return 1
	}
	defer conn.Close()

	var snap consensus.StatusSnapshot
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := json.NewDecoder(conn).Decode(&snap); err != nil {
		fmt.Fprintf(os.Stderr, "read status: %v\n", err)
		return 1
	}

	fmt.Printf("node_id:         %d\n", snap.NodeID)
	fmt.Printf("role:            %s\n", snap.Role)
	fmt.Printf("term:            %d\n", snap.Term)
	fmt.Printf("position:        %d\n", snap.Position)
	fmt.Printf("commit_position: %d\n", snap.CommitPosition)
	if snap.HasLeader {
		fmt.Printf("leader_session:  %d\n", snap.LeaderSessionID)
	} else {
		fmt.Println("leader_session:  (none)")
	}
	if snap.HasVoted {
		fmt.Printf("voted_for:       %d\n", snap.VotedFor)
	} else {
		fmt.Println("voted_for:       (none)")
	}
	if len(snap.PeerAck) > 0 {
		fmt.Println("peer_ack:")
		for peer, pos := range snap.PeerAck {
			fmt.Printf("  %d: %d\n", peer, pos)
		}
	}
	return 0
}
