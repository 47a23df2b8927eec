package main

import (
	"fmt"
	"os"
)

const usageText = `tabflow inspects persisted agent sessions and settings.

Usage:
  tabflow <command> [flags]

Commands:
  sessions  list persisted sessions and their tabs
  agents    list known agent kinds and their availability
  config    print configuration (effective or defaults)
  help      show help

Flags:
  -h, --help   show help

Examples:
  tabflow sessions
  tabflow agents
  tabflow config --defaults
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	if err := runner.Run(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}
