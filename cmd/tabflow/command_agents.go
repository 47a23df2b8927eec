package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"tabflow/internal/agents"
)

type agentsCommand struct {
	stdout io.Writer
}

func NewAgentsCommand(stdout io.Writer) commandRunner {
	return &agentsCommand{stdout: stdout}
}

func (c *agentsCommand) Run(args []string) error {
	directory := agents.NewDirectory()
	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLABEL\tAVAILABLE")
	for _, def := range agents.All() {
		available, _, err := directory.Probe(def.Name)
		status := "no"
		if err != nil {
			status = "unknown"
		} else if available {
			status = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, def.Label, status)
	}
	return w.Flush()
}
