package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/b0risfosso/lang/internal/model"
)

// CommandRunner shells out to an external program for each task: the task
// is written to the program's stdin as JSON, and the program prints a
// Result as JSON on stdout. This keeps model calls entirely outside the
// store process.
type CommandRunner struct {
	Name string
	Args []string
}

func (r *CommandRunner) Run(ctx context.Context, task *model.Task) (*Result, error) {
	in, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, r.Name, r.Args...)
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, fmt.Errorf("%s: %s", r.Name, msg)
		}
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("%s: invalid result JSON: %w", r.Name, err)
	}
	if len(result.Text) == 0 {
		return nil, fmt.Errorf("%s: result has no text", r.Name)
	}
	return &result, nil
}
