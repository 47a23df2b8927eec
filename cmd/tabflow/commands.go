package main

import (
	"io"
	"os"

	"tabflow/internal/config"
	"tabflow/internal/store"
)

type commandRunner interface {
	Run(args []string) error
}

type repositoryFactory func() (store.Repository, error)

type commandWiring struct {
	stdout  io.Writer
	stderr  io.Writer
	newRepo repositoryFactory
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:  stdout,
		stderr:  stderr,
		newRepo: openDefaultRepository,
	}
}

func openDefaultRepository() (store.Repository, error) {
	path, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	return store.NewBboltRepository(path)
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"sessions": NewSessionsCommand(wiring.stdout, wiring.newRepo),
		"agents":   NewAgentsCommand(wiring.stdout),
		"config":   NewConfigCommand(wiring.stdout),
	}
}
