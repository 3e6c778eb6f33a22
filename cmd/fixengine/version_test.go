package main

import "testing"

func TestVersionCmd(t *testing.T) {
	if code := versionCmd(nil); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestVersionCmd_Short(t *testing.T) {
	if code := versionCmd([]string{"-short"}); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestVersionCmd_Help(t *testing.T) {
	if code := versionCmd([]string{"-h"}); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}
