package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spachava753/jumpstart/internal/logcapture"
	"github.com/spachava753/jumpstart/internal/schema"
)

// Cloner fetches a repository at a ref into dest. dest must not exist yet.
// Progress and subprocess output go to logger.
type Cloner interface {
	Clone(ctx context.Context, logger *slog.Logger, repoURL, ref, dest string) error
}

// GitCloner clones with the git CLI.
type GitCloner struct {
	// Binary defaults to "git".
	Binary string
}

// Clone checks out ref from repoURL into dest. Branch and tag refs use a
// single-branch clone. For refs that look like commit SHAs it does a full
// clone then checks out the commit. git's output is logged line by line
// and the last lines are attached to any error.
func (g *GitCloner) Clone(ctx context.Context, logger *slog.Logger, repoURL, ref, dest string) error {
	if logger == nil {
		logger = slog.Default()
	}
	out := logcapture.NewWriter(logger, slog.LevelInfo)
	defer out.Flush()

	if schema.IsCommitRef(ref) {
		logger.Debug("cloning repository (full)", "url", repoURL, "commit", ref, "dest", dest)
		if err := g.run(ctx, out, "", "clone", repoURL, dest); err != nil {
			return fmt.Errorf("git clone: %w", err)
		}
		logger.Debug("checking out commit", "commit", ref)
		if err := g.run(ctx, out, dest, "checkout", ref); err != nil {
			return fmt.Errorf("git checkout %s: %w", ref, err)
		}
		return nil
	}

	logger.Debug("cloning repository (single branch)", "url", repoURL, "ref", ref, "dest", dest)
	if err := g.run(ctx, out, "", "clone", "--branch", ref, "--single-branch", repoURL, dest); err != nil {
		return fmt.Errorf("git clone: %w", err)
	}
	return nil
}

func (g *GitCloner) run(ctx context.Context, out io.Writer, dir string, args ...string) error {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	tail := logcapture.NewTail(10)
	w := tail.Tee(out)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Run(); err != nil {
		if lines := tail.String(); lines != "" {
			return fmt.Errorf("%w: %s", err, lines)
		}
		return err
	}
	return nil
}
