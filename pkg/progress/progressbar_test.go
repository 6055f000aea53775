package progress

import (
	"testing"
	"time"

	"github.com/antgroup/metasync/modules/term"
)

func TestNewBar(t *testing.T) {
	term.StderrLevel = term.Level16M
	b := NewBar("init", 10, true)
	for i := 0; i < 10; i++ {
		time.Sleep(time.Millisecond)
		b.Add(1)
	}
	b.Finish()
}
