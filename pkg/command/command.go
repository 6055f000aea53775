// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package command implements the metasync CLI subcommands: diff, merge,
// package and config. Each struct is a kong command; Run orchestrates the
// directory walk, the mdtree engine, and difflog I/O.
package command

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/antgroup/metasync/pkg/kong"
	"github.com/antgroup/metasync/pkg/version"
)

// Globals holds flags shared by every subcommand.
type Globals struct {
	Verbose bool        `short:"V" name:"verbose" help:"Make the operation more talkative"`
	Version VersionFlag `short:"v" name:"version" help:"Show version number and quit"`
	Config  string      `name:"config" help:"Path to a repository-level metasync.toml"`
}

func (g *Globals) DbgPrint(format string, args ...any) {
	if !g.Verbose {
		return
	}
	message := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	var buffer bytes.Buffer
	for _, s := range strings.Split(message, "\n") {
		buffer.WriteString("\x1b[33m* ")
		buffer.WriteString(s)
		buffer.WriteString("\x1b[0m\n")
	}
	_, _ = os.Stderr.Write(buffer.Bytes())
}

type VersionFlag bool

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(version.GetVersionString())
	app.Exit(0)
	return nil
}

// ErrArgRequired is returned by subcommands missing a required positional
// argument kong itself does not enforce (e.g. conditionally-required ones).
var ErrArgRequired = errors.New("arg required")
