package main

import (
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/consensus"
)

func TestStatusCmd_MissingSocketFlag(t *testing.T) {
	if code := statusCmd(nil); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestStatusCmd_ConnectFailure(t *testing.T) {
	if code := statusCmd([]string{"-socket", "/nonexistent/control.sock"}); code != 1 {
		t.Errorf("expected exit code 1 for unreachable socket, got %d", code)
	}
}

func TestStatusCmd_PrintsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		json.NewEncoder(conn).Encode(consensus.StatusSnapshot{NodeID: 5, Role: consensus.RoleFollower, Term: 1})
	}()

	time.Sleep(10 * time.Millisecond)
	if code := statusCmd([]string{"-socket", path}); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}
