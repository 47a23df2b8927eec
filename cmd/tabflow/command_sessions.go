package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

type sessionsCommand struct {
	stdout  io.Writer
	newRepo repositoryFactory
}

func NewSessionsCommand(stdout io.Writer, newRepo repositoryFactory) commandRunner {
	return &sessionsCommand{stdout: stdout, newRepo: newRepo}
}

func (c *sessionsCommand) Run(args []string) error {
	repo, err := c.newRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	sessions, err := repo.Sessions().List(context.Background())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(c.stdout, "no sessions")
		return nil
	}

	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAGENT\tTABS\tPROJECT")
	for _, session := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			session.ID, session.Name, session.AgentKind, len(session.AITabs), session.ProjectRoot)
	}
	return w.Flush()
}
