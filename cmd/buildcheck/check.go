package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"buildcheck.io/buildcheck/internal/checker"
	"buildcheck.io/buildcheck/internal/config"
	apperrors "buildcheck.io/buildcheck/internal/pkg/errors"
	"buildcheck.io/buildcheck/internal/pkg/logger"
	"buildcheck.io/buildcheck/internal/pkg/worker"
	"buildcheck.io/buildcheck/internal/policy"
	"buildcheck.io/buildcheck/internal/report"
)

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagPolicy   string
		flagFormat   string
		flagRecipe   string
		flagManifest string
		flagVerbose  bool
	)
	fs.StringVar(&flagPolicy, "policy", "", "policy file (YAML); built-in default policy when omitted")
	fs.StringVar(&flagFormat, "format", "", "report format: text, json or sarif")
	fs.StringVar(&flagRecipe, "recipe", "", "recipe file inside each target")
	fs.StringVar(&flagManifest, "manifest", "", "manifest file inside each target")
	fs.BoolVar(&flagVerbose, "verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return apperrors.ExitOK
		}
		return apperrors.ExitError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitError
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitError
	}
	defer func() { _ = logger.Sync() }()
	if flagVerbose {
		_ = logger.SetLevel("debug")
	}

	// Flags override file/env configuration.
	if flagFormat != "" {
		cfg.Report.Format = flagFormat
	}
	if flagRecipe != "" {
		cfg.Check.RecipeFile = flagRecipe
	}
	if flagManifest != "" {
		cfg.Check.ManifestFile = flagManifest
	}
	if flagPolicy != "" {
		cfg.Check.PolicyFile = flagPolicy
	}

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitError
	}

	pol, err := loadPolicy(cfg.Check.PolicyFile)
	if err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}

	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	logger.Debug("Starting check",
		zap.String("policy", pol.Name),
		zap.Int("rules", len(pol.Rules)),
		zap.Strings("targets", targets),
	)

	chk := checker.New(pol, checker.Options{
		RecipeFile:   cfg.Check.RecipeFile,
		ManifestFile: cfg.Check.ManifestFile,
	})
	renderer := report.NewRenderer(stdout, format)
	ctx := context.Background()

	if len(targets) == 1 {
		return checkOne(ctx, chk, renderer, targets[0], stderr)
	}
	return checkMany(ctx, chk, renderer, cfg.Worker.PoolSize, targets, stderr)
}

func checkOne(ctx context.Context, chk *checker.Checker, renderer *report.Renderer, target string, stderr io.Writer) int {
	rep, err := chk.CheckTarget(ctx, target)
	if err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}
	if err := renderer.Render(rep); err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitError
	}
	if !rep.Passed {
		return apperrors.ExitRuleFailure
	}
	return apperrors.ExitOK
}

func checkMany(ctx context.Context, chk *checker.Checker, renderer *report.Renderer, poolSize int, targets []string, stderr io.Writer) int {
	pool, err := worker.NewPool(ctx, poolSize)
	if err != nil {
		fmt.Fprintf(stderr, "buildcheck: %v\n", err)
		return apperrors.ExitError
	}
	defer pool.Shutdown()

	exit := apperrors.ExitOK
	for _, res := range chk.RunAll(ctx, pool, targets) {
		if res.Err != nil {
			fmt.Fprintf(stderr, "buildcheck: %s: %v\n", res.Target, res.Err)
			exit = apperrors.ExitError
			continue
		}
		if err := renderer.Render(res.Report); err != nil {
			fmt.Fprintf(stderr, "buildcheck: %v\n", err)
			return apperrors.ExitError
		}
		if !res.Report.Passed && exit == apperrors.ExitOK {
			exit = apperrors.ExitRuleFailure
		}
	}
	return exit
}

func loadPolicy(path string) (*policy.Policy, error) {
	if path == "" {
		return policy.Default(), nil
	}
	return policy.Load(path)
}
