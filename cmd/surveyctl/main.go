// Command surveyctl analyses a survey export from the command line and writes
// the same charts the web server renders.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/surveyviz/internal/survey"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		if survey.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, "  "+survey.FormatUserError(err))
		}
		os.Exit(1)
	}
}
