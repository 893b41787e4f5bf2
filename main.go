// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/jessevdk/go-flags"

	"github.com/ForrestLi/ITCH-OUCH-tool/cmd"
	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/log"
)

type options struct {
	LogFileName string `short:"l" long:"log" value-name:"FILE" default:"-" default-mask:"stderr" description:"append the log to this file"`
	ProfileCpu  string `long:"profile-cpu" value-name:"FILE"`
	ProfileMem  string `long:"profile-mem" value-name:"FILE"`
}

func main() {
	defer errs.Catch(func(ce errs.CheckerError) {
		log.Fatalf("%+v", ce)
	})

	var opts options
	parser := flags.NewParser(&opts, flags.PassDoubleDash|flags.HelpFlag)
	errs.CheckE(cmd.AddCommands(parser))
	parser.CommandHandler = func(c flags.Commander, args []string) error {
		return opts.run(c, args)
	}
	_, err := parser.Parse()
	if e, ok := err.(*flags.Error); ok && e.Type != flags.ErrUnknown {
		fmt.Printf("%s\n", e.Message)
		if e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	errs.CheckE(err)
}

// run executes the selected command with the log and profiles in place.
func (opts *options) run(c flags.Commander, args []string) (err error) {
	defer errs.PassE(&err)
	logFile, err := log.SetOutputFile(opts.LogFileName)
	errs.CheckE(err)
	defer logFile.Close()

	if opts.ProfileCpu != "" {
		profFile, err := os.Create(opts.ProfileCpu)
		errs.CheckE(err)
		errs.CheckE(pprof.StartCPUProfile(profFile))
		defer pprof.StopCPUProfile()
	}

	errs.CheckE(c.Execute(args))

	if opts.ProfileMem != "" {
		profFile, err := os.Create(opts.ProfileMem)
		errs.CheckE(err)
		defer profFile.Close()
		errs.CheckE(pprof.WriteHeapProfile(profFile))
	}
	return
}
