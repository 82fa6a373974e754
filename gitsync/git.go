package gitsync

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// execGit runs one git invocation and folds any output into the error, since
// git writes its diagnostics to stderr.
func execGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

func gitClone(ctx context.Context, repoURL, localPath string) error {
	return execGit(ctx, "", "clone", repoURL, localPath)
}

func gitPull(ctx context.Context, localPath string) error {
	return execGit(ctx, localPath, "pull")
}
