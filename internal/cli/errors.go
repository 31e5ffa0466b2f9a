package cli

import (
	"fmt"
	"os"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
)

// PrintError prints an error to stderr with appropriate formatting.
// A GrocerError gets its user-facing form; anything else prints as is.
func PrintError(err error) {
	if gErr := grocererrors.AsGrocerError(err); gErr != nil {
		fmt.Fprintln(os.Stderr, gErr.UserMessage())
		if verbose {
			fmt.Fprintf(os.Stderr, "\nCode: %s\n", gErr.Code)
			if gErr.Cause != nil {
				fmt.Fprintf(os.Stderr, "Cause: %v\n", gErr.Cause)
			}
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
