package commands

import (
	"fmt"
	"io"

	"github.com/allisson/fieldvault/internal/taxid"
)

// RunMaskValue masks a taxpayer identification number for safe display in
// support tooling, keeping only the last four digits. A value without enough
// digits masks to the fully-redacted form.
func RunMaskValue(out io.Writer, value string) error {
	if value == "" {
		return fmt.Errorf("value is required")
	}

	fmt.Fprintln(out, taxid.Mask(value))
	return nil
}
