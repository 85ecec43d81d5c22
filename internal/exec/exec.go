package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/riverhollow/wtr/internal/log"
)

// DirectiveFileEnvVar is stripped from every spawned child's environment so
// a subprocess (in particular a detached hook that re-invokes wtr) can
// never accidentally write to the parent invocation's directive file.
const DirectiveFileEnvVar = "WTR_DIRECTIVE_FILE"

// Run executes cmd, attaching stderr capture, and returns stderr text as
// the error message on failure. Mirrors the teacher's internal/cmd.Run.
func Run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	if cmd.Stderr == nil {
		cmd.Stderr = &stderr
	}
	if err := cmd.Run(); err != nil {
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return fmt.Errorf("%s", errMsg)
		}
		return err
	}
	return nil
}

// Output executes cmd and returns stdout, with stderr folded into the
// error on failure.
func Output(cmd *exec.Cmd) ([]byte, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return nil, fmt.Errorf("%s", errMsg)
		}
		return nil, err
	}
	return out, nil
}

// RunContext runs name with args in dir, honoring ctx cancellation and
// logging the invocation (with duration) through the context's logger.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = SanitizedEnv(nil)
	err := Run(c)
	done(time.Since(start))
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// OutputContext is RunContext's output-collecting counterpart.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = SanitizedEnv(nil)
	out, err := Output(c)
	done(time.Since(start))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return out, err
}
