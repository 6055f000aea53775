// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/antgroup/metasync/pkg/command"
	"github.com/antgroup/metasync/pkg/kong"
	"github.com/antgroup/metasync/pkg/tr"
	"github.com/antgroup/metasync/pkg/version"
)

type App struct {
	command.Globals
	Diff    command.Diff    `cmd:"diff" help:"Diff a source metadata tree against one or more target trees"`
	Merge   command.Merge   `cmd:"merge" help:"Apply a diff log to a target metadata tree"`
	Package command.Package `cmd:"package" help:"Assemble a deployment package from a diff log"`
	Config  command.Config  `cmd:"config" help:"Show resolved tool configuration"`
	Version command.Version `cmd:"version" help:"Display version information"`
}

func main() {
	_ = tr.Initialize()
	kong.BindW(tr.W)
	var app App
	ctx := kong.Parse(&app,
		kong.Name("metasync"),
		kong.Description("metasync - structural diff and merge for cloud-application metadata trees"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": version.GetVersionString(),
		},
	)
	now := time.Now()
	err := ctx.Run(&app.Globals)
	if app.Verbose {
		app.DbgPrint("time spent: %v", time.Since(now))
	}
	if err == nil {
		return
	}
	if e, ok := err.(kong.ExitCoder); ok {
		os.Exit(e.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "metasync: %v\n", err)
	os.Exit(1)
}
