// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package cmd holds the subcommands of the itch-ouch tool. Each command
// registers itself from init; go-flags runs the selected one through its
// Execute method.
package cmd

import (
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type command struct {
	name  string
	short string
	long  string
	data  flags.Commander
}

var commands []command

// Register adds a subcommand. data carries the go-flags options of the
// command and runs it.
func Register(name, short, long string, data flags.Commander) {
	commands = append(commands, command{name: name, short: short, long: long, data: data})
}

// AddCommands attaches every registered subcommand to parser.
func AddCommands(parser *flags.Parser) error {
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			return errors.Wrapf(err, "command %s", c.name)
		}
	}
	return nil
}
