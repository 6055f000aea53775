// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"os"

	"github.com/antgroup/metasync/modules/term"
	"github.com/antgroup/metasync/pkg/tr"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	blueColorMap = map[term.Level]string{
		term.Level256: "\x1b[36m",
		term.Level16M: "\x1b[38;2;72;198;239m",
	}
	endColorMap = map[term.Level]string{
		term.Level256: "\x1b[0m",
		term.Level16M: "\x1b[0m",
	}
)

// Bar wraps a single mpb progress bar. The core parser/differ/merger in
// modules/mdtree never touches a Bar directly; only the CLI driver
// (pkg/command) does, so the sequential, single-threaded processing model
// of the core is unaffected by the bar's own internal render goroutine.
type Bar struct {
	p     *mpb.Progress
	bar   *mpb.Bar
	total int
}

func wrapDescription(description string) string {
	if term.StderrLevel != term.LevelNone {
		return fmt.Sprintf("\x1b[0m%s...", description)
	}
	return description + "..."
}

// NewBar returns a bar with a known total, e.g. the number of files found by
// a directory walk before diffing or merging begins.
func NewBar(description string, total int, quiet bool) *Bar {
	if quiet || total <= 0 {
		return &Bar{total: total}
	}
	p := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(40))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(decor.Name(wrapDescription(tr.W(description)))),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d"), decor.Percentage()),
	)
	return &Bar{p: p, bar: bar, total: total}
}

// NewUnknownBar returns a bar whose total is not known up front, e.g. the
// number of rows remaining while applying a merge log of unknown size.
func NewUnknownBar(description string, quiet bool) *Bar {
	if quiet {
		return &Bar{}
	}
	p := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(40))
	bar := p.AddSpinner(-1, mpb.SpinnerOnLeft,
		mpb.PrependDecorators(decor.Name(wrapDescription(tr.W(description)))),
		mpb.AppendDecorators(decor.CurrentNoUnit("%d")),
	)
	return &Bar{p: p, bar: bar}
}

func (b *Bar) Add(n int) {
	if b.bar != nil {
		b.bar.IncrBy(n)
	}
}

func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	b.bar.SetTotal(-1, true)
	b.p.Wait()
}
