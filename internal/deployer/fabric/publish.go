package fabric

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/spachava753/jumpstart/internal/deployer"
	"github.com/spachava753/jumpstart/internal/logcapture"
)

// Publisher performs the actual deployment of an item tree.
type Publisher interface {
	Publish(ctx context.Context, req deployer.PublishRequest) error
}

// CommandPublisher runs an external publisher program. The request is
// passed as flags appended to Argv:
//
//	--workspace-id <id> --repository-directory <dir>
//	[--item-types <t1,t2>] [--feature-flag <flag>]...
type CommandPublisher struct {
	Argv []string
	// Env is appended to the inherited environment, e.g. a token variable.
	Env []string
}

// Args returns the full argv for req.
func (p *CommandPublisher) Args(req deployer.PublishRequest) []string {
	var args []string
	if len(p.Argv) > 1 {
		args = append(args, p.Argv[1:]...)
	}
	args = append(args, "--workspace-id", req.WorkspaceID, "--repository-directory", req.SourceDir)
	if len(req.ItemTypes) > 0 {
		args = append(args, "--item-types", strings.Join(req.ItemTypes, ","))
	}
	for _, f := range req.FeatureFlags {
		args = append(args, "--feature-flag", f)
	}
	return args
}

// Publish runs the publisher, streaming its output to req.Output. A
// non-zero exit is returned with the tail of the output for diagnosis.
func (p *CommandPublisher) Publish(ctx context.Context, req deployer.PublishRequest) error {
	if len(p.Argv) == 0 {
		return fmt.Errorf("publish command is empty")
	}

	args := p.Args(req)
	slog.Debug("running publisher", "command", p.Argv[0], "args", args)

	tail := logcapture.NewTail(20)
	cmd := exec.CommandContext(ctx, p.Argv[0], args...)
	cmd.Env = append(cmd.Environ(), p.Env...)
	out := tail.Tee(req.Output)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		if lines := tail.String(); lines != "" {
			return fmt.Errorf("publisher failed: %w: %s", err, lines)
		}
		return fmt.Errorf("publisher failed: %w", err)
	}
	return nil
}
