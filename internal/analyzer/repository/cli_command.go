package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// splitCommand splits a command template into argv, honoring single and
// double quotes so prompts substituted into templates survive intact.
func splitCommand(cmd string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	inToken := false

	for _, r := range cmd {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n':
			if inToken {
				args = append(args, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		args = append(args, current.String())
	}
	return args
}

// quoteArg wraps s in single quotes for substitution into a command
// template. Embedded single quotes are carried through a double-quoted
// section so splitCommand reassembles the argument intact.
func quoteArg(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

type cliOutput struct {
	stdout string
	stderr string
}

// runCLI executes argv, optionally feeding stdin, and returns the captured
// output. A missing binary is reported via exec.ErrNotFound.
func runCLI(ctx context.Context, argv []string, stdin string) (*cliOutput, error) {
	if len(argv) == 0 {
		return nil, errors.New("command resolved to an empty argv")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	err := cmd.Run()
	out := &cliOutput{stdout: stdout.String(), stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := out.stderr
			if detail == "" {
				detail = out.stdout
			}
			return out, fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), detail)
		}
		return out, err
	}
	return out, nil
}
