// Package doctor verifies the local environment: every external tool the
// command table dispatches to must be resolvable on PATH, and the project
// checkout should look like the tools expect it to.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/go-git/go-git/v5"
	"golang.org/x/sync/errgroup"

	"github.com/runlabhq/devrun/internal/config"
)

// Check is one verification outcome.
type Check struct {
	Name     string
	OK       bool
	Detail   string
	Required bool
}

// Report aggregates all checks.
type Report struct {
	Checks []Check
}

// Healthy reports whether every required check passed.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Required && !c.OK {
			return false
		}
	}
	return true
}

// lookPath is a seam for tests.
var lookPath = exec.LookPath

// Run performs all environment checks. Binary lookups run concurrently;
// everything else is cheap and runs inline.
func Run(ctx context.Context, cfg *config.Configuration) Report {
	var report Report

	report.Checks = append(report.Checks, binaryChecks(ctx, cfg)...)
	report.Checks = append(report.Checks, dotenvCheck(cfg))
	report.Checks = append(report.Checks, gitCheck())

	return report
}

// binaryChecks resolves every configured tool binary on PATH.
func binaryChecks(ctx context.Context, cfg *config.Configuration) []Check {
	binaries := requiredBinaries(cfg)

	// Each goroutine writes its own slice element, so no locking is needed.
	checks := make([]Check, len(binaries))
	g, _ := errgroup.WithContext(ctx)

	for i, binary := range binaries {
		i, binary := i, binary
		g.Go(func() error {
			path, err := lookPath(binary)
			check := Check{Name: binary, Required: true}
			if err != nil {
				check.Detail = "not found on PATH"
			} else {
				check.OK = true
				check.Detail = path
			}
			checks[i] = check
			return nil
		})
	}
	_ = g.Wait()

	return checks
}

// requiredBinaries extracts the deduplicated set of tool binaries from
// the configuration, sorted for stable output.
func requiredBinaries(cfg *config.Configuration) []string {
	seen := make(map[string]bool)
	for _, argv := range [][]string{
		cfg.ComposeCmd, cfg.ServerCmd, cfg.MigrateCmd,
		cfg.TestCmd, cfg.LintCmd, cfg.FormatCmd, cfg.InstallCmd,
	} {
		if len(argv) > 0 {
			seen[argv[0]] = true
		}
	}

	binaries := make([]string, 0, len(seen))
	for binary := range seen {
		binaries = append(binaries, binary)
	}
	sort.Strings(binaries)
	return binaries
}

// dotenvCheck reports whether the project dotenv file exists. The file
// is optional, so this check is informational only.
func dotenvCheck(cfg *config.Configuration) Check {
	check := Check{Name: cfg.EnvFile, Required: false}
	if cfg.EnvFile == "" {
		check.OK = true
		check.Detail = "disabled"
		return check
	}
	if _, err := os.Stat(cfg.EnvFile); err != nil {
		check.Detail = "not found (tools fall back to their own defaults)"
		return check
	}
	check.OK = true
	check.Detail = "present"
	return check
}

// gitCheck reports repository state and current branch. Running outside
// a repository is allowed, so the check is informational.
func gitCheck() Check {
	check := Check{Name: "git repository", Required: false}

	wd, err := os.Getwd()
	if err != nil {
		check.Detail = fmt.Sprintf("cannot determine working directory: %v", err)
		return check
	}

	repo, err := git.PlainOpenWithOptions(wd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		check.Detail = "not a git repository"
		return check
	}

	check.OK = true
	head, err := repo.Head()
	if err != nil {
		check.Detail = "repository found (no commits yet)"
		return check
	}
	if head.Name().IsBranch() {
		check.Detail = "on branch " + head.Name().Short()
	} else {
		check.Detail = "detached HEAD"
	}
	return check
}
