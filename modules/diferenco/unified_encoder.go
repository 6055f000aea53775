package diferenco

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antgroup/metasync/modules/diferenco/color"
)

var (
	operationChar = map[Operation]byte{
		Insert: '+',
		Delete: '-',
		Equal:  ' ',
	}

	operationColorKey = map[Operation]color.ColorKey{
		Insert: color.New,
		Delete: color.Old,
		Equal:  color.Context,
	}
)

// UnifiedEncoder encodes a unified diff into the provided Writer.
type UnifiedEncoder struct {
	io.Writer

	srcPrefix string
	dstPrefix string
	// color is the color configuration. The default is no color.
	color color.ColorConfig
}

// NewUnifiedEncoder returns a new UnifiedEncoder that writes to w.
func NewUnifiedEncoder(w io.Writer) *UnifiedEncoder {
	return &UnifiedEncoder{
		Writer:    w,
		srcPrefix: "a/",
		dstPrefix: "b/",
	}
}

// SetColor sets e's color configuration and returns e.
func (e *UnifiedEncoder) SetColor(colorConfig color.ColorConfig) *UnifiedEncoder {
	e.color = colorConfig
	return e
}

func (e *UnifiedEncoder) Encode(patches []*Unified) error {
	for _, u := range patches {
		if err := e.writeUnified(u); err != nil {
			return err
		}
	}
	return nil
}

func (e *UnifiedEncoder) writeFilePatchHeader(u *Unified, b *strings.Builder) {
	from, to := u.From, u.To
	if from == nil && to == nil {
		return
	}
	var lines []string
	switch {
	case from != nil && to != nil:
		lines = append(lines,
			fmt.Sprintf("diff --metasync %s%s %s%s", e.srcPrefix, from.Path, e.dstPrefix, to.Path),
			"--- "+e.srcPrefix+from.Path,
			"+++ "+e.dstPrefix+to.Path,
		)
	case from == nil:
		lines = append(lines,
			fmt.Sprintf("diff --metasync %s %s", e.srcPrefix+to.Path, e.dstPrefix+to.Path),
			"new file",
			"--- /dev/null",
			"+++ "+e.dstPrefix+to.Path,
		)
	case to == nil:
		lines = append(lines,
			fmt.Sprintf("diff --metasync %s %s", e.srcPrefix+from.Path, e.dstPrefix+from.Path),
			"deleted file",
			"--- "+e.srcPrefix+from.Path,
			"+++ /dev/null",
		)
	}
	b.WriteString(e.color[color.Meta])
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	b.WriteString(e.color.Reset(color.Meta))
	b.WriteByte('\n')
}

func (e *UnifiedEncoder) writePatchHunk(b *strings.Builder, hunk *Hunk) {
	fromCount, toCount := 0, 0
	for _, l := range hunk.Lines {
		switch l.Kind {
		case Delete:
			fromCount++
		case Insert:
			toCount++
		default:
			fromCount++
			toCount++
		}
	}
	b.WriteString(e.color[color.Frag])
	b.WriteString("@@")
	if fromCount != 1 {
		b.WriteString(" -" + strconv.Itoa(hunk.FromLine) + "," + strconv.Itoa(fromCount))
	} else {
		b.WriteString(" -" + strconv.Itoa(hunk.FromLine))
	}
	if toCount != 1 {
		b.WriteString(" +" + strconv.Itoa(hunk.ToLine) + "," + strconv.Itoa(toCount))
	} else {
		b.WriteString(" +" + strconv.Itoa(hunk.ToLine))
	}
	b.WriteString(" @@")
	b.WriteString(e.color.Reset(color.Frag))
	b.WriteByte('\n')
	for _, line := range hunk.Lines {
		e.writeLine(b, &line)
	}
}

func (e *UnifiedEncoder) writeLine(b *strings.Builder, o *Line) {
	colorKey := operationColorKey[o.Kind]
	b.WriteString(e.color[colorKey])
	b.WriteByte(operationChar[o.Kind])
	if strings.HasSuffix(o.Content, "\n") {
		b.WriteString(strings.TrimSuffix(o.Content, "\n"))
		b.WriteString(e.color.Reset(colorKey))
		b.WriteByte('\n')
		return
	}
	b.WriteString(o.Content)
	b.WriteString(e.color.Reset(colorKey))
	b.WriteString("\n\\ No newline at end of file\n")
}

func (e *UnifiedEncoder) writeUnified(u *Unified) error {
	b := &strings.Builder{}
	if len(u.Message) != 0 {
		b.WriteString(u.Message)
		if !strings.HasSuffix(u.Message, "\n") {
			b.WriteByte('\n')
		}
	}
	e.writeFilePatchHeader(u, b)
	for _, hunk := range u.Hunks {
		e.writePatchHunk(b, hunk)
	}
	_, err := io.WriteString(e.Writer, b.String())
	return err
}
