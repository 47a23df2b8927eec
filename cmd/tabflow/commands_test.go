package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildCommandsWiresEveryCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	commands := buildCommands(defaultCommandWiring(&stdout, &stderr))
	for _, name := range []string{"sessions", "agents", "config"} {
		if _, ok := commands[name]; !ok {
			t.Fatalf("missing command %q", name)
		}
	}
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	var stdout bytes.Buffer
	cmd := NewConfigCommand(&stdout)
	if err := cmd.Run([]string{"--defaults"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "closed_history_capacity = 25") {
		t.Fatalf("expected default history capacity in output:\n%s", out)
	}
	if !strings.Contains(out, "[grooming]") {
		t.Fatalf("expected grooming section in output:\n%s", out)
	}
}

func TestAgentsCommandListsRegistry(t *testing.T) {
	var stdout bytes.Buffer
	cmd := NewAgentsCommand(&stdout)
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	for _, name := range []string{"claude", "codex", "opencode"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %q in output:\n%s", name, out)
		}
	}
}
