package term

import "github.com/acarl005/stripansi"

// StripANSI removes ANSI escape sequences from s, used when writing
// diff/report output to a file or a non-terminal pipe.
func StripANSI(s string) string {
	return stripansi.Strip(s)
}
