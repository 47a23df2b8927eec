package main

import (
	"flag"
	"io"

	toml "github.com/pelletier/go-toml/v2"

	"tabflow/internal/config"
)

type configCommand struct {
	stdout io.Writer
}

func NewConfigCommand(stdout io.Writer) commandRunner {
	return &configCommand{stdout: stdout}
}

func (c *configCommand) Run(args []string) error {
	flags := flag.NewFlagSet("config", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	defaults := flags.Bool("defaults", false, "print default settings instead of the effective ones")
	if err := flags.Parse(args); err != nil {
		return err
	}

	settings := config.DefaultSettings()
	if !*defaults {
		path, err := config.SettingsPath()
		if err != nil {
			return err
		}
		settings, err = config.LoadSettings(path)
		if err != nil {
			return err
		}
	}

	raw, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(raw)
	return err
}
