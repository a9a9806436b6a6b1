package main

import (
	"fmt"
	"io"

	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
)

// Set at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func runVersion(stdout io.Writer) int {
	fmt.Fprintf(stdout, "buildcheck %s (%s)\n", version, commit)
	return apperrors.ExitOK
}
