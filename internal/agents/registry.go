package agents

import (
	"fmt"
	"os/exec"
	"strings"
)

// Definition describes one agent kind the application can spawn tabs for.
type Definition struct {
	Name              string
	Label             string
	CommandCandidates []string
}

var registry = []Definition{
	{
		Name:              "claude",
		Label:             "Claude Code",
		CommandCandidates: []string{"claude"},
	},
	{
		Name:              "codex",
		Label:             "Codex",
		CommandCandidates: []string{"codex"},
	},
	{
		Name:              "opencode",
		Label:             "OpenCode",
		CommandCandidates: []string{"opencode"},
	},
	{
		Name:              "gemini",
		Label:             "Gemini",
		CommandCandidates: []string{"gemini"},
	},
	{
		Name:  "custom",
		Label: "Custom",
	},
}

var registryByName = buildByName(registry)

func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func All() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, def := range registry {
		out = append(out, cloneDefinition(def))
	}
	return out
}

func Lookup(name string) (Definition, bool) {
	def, ok := registryByName[Normalize(name)]
	if !ok {
		return Definition{}, false
	}
	return cloneDefinition(def), true
}

func buildByName(defs []Definition) map[string]Definition {
	out := make(map[string]Definition, len(defs))
	for _, def := range defs {
		name := Normalize(def.Name)
		if name == "" {
			continue
		}
		out[name] = cloneDefinition(def)
	}
	return out
}

func cloneDefinition(def Definition) Definition {
	copy := def
	if def.CommandCandidates != nil {
		copy.CommandCandidates = append([]string{}, def.CommandCandidates...)
	}
	return copy
}

// Directory answers advisory availability questions by probing PATH for the
// agent's command candidates. LookPath is swappable for tests.
type Directory struct {
	LookPath func(cmd string) (string, error)
}

func NewDirectory() *Directory {
	return &Directory{LookPath: exec.LookPath}
}

func (d *Directory) Probe(kind string) (bool, string, error) {
	def, ok := Lookup(kind)
	if !ok {
		return false, kind, fmt.Errorf("unknown agent kind %q", kind)
	}
	if len(def.CommandCandidates) == 0 {
		// Custom agents carry no probeable command; treat as available.
		return true, def.Label, nil
	}
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, candidate := range def.CommandCandidates {
		if _, err := lookPath(candidate); err == nil {
			return true, def.Label, nil
		}
	}
	return false, def.Label, nil
}
