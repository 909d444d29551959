package cli

import (
	"fmt"
	"io"
)

// fprintf writes command output. Errors writing to the terminal are not
// actionable and are dropped.
func fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
