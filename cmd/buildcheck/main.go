// Package main is the entry point for the buildcheck CLI.
//
// buildcheck evaluates container build recipes and dependency manifests
// against a compliance policy and reports per-rule outcomes.
package main

import (
	"fmt"
	"io"
	"os"

	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code:
// 0 all rules passed, 1 at least one rule failed, 2 load or usage error.
// Anything that is not a known subcommand is treated as arguments to
// check, so `buildcheck ./services/api` works without naming it.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "check":
			return runCheck(args[1:], stdout, stderr)
		case "rules":
			return runRules(stdout)
		case "version":
			return runVersion(stdout)
		case "help", "-h", "--help":
			usage(stdout)
			return apperrors.ExitOK
		}
	}
	return runCheck(args, stdout, stderr)
}

func usage(w io.Writer) {
	fmt.Fprint(w, `buildcheck evaluates build recipes and dependency manifests
against a compliance policy.

Usage:
  buildcheck [check] [flags] [target-dir ...]
  buildcheck rules
  buildcheck version

Flags for check:
  -policy path    policy file (YAML); built-in default policy when omitted
  -format name    report format: text, json or sarif
  -recipe name    recipe file inside each target (default Dockerfile)
  -manifest name  manifest file inside each target (default requirements.txt)
  -verbose        debug logging

With no target, check runs against the current directory. The full
report goes to stdout; logs and errors go to stderr.

Exit status: 0 all rules passed, 1 rule failures, 2 load or usage error.
`)
}
