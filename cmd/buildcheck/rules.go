package main

import (
	"fmt"
	"io"

	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
	"buildcheck.io/buildcheck/internal/rules"
)

// runRules lists the built-in rule catalog, one rule per line.
func runRules(stdout io.Writer) int {
	for _, info := range rules.Catalog() {
		fmt.Fprintf(stdout, "%-22s %s\n", info.ID, info.Description)
	}
	return apperrors.ExitOK
}
