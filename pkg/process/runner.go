// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package process

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrAborted marks a subprocess that was killed before it finished
var ErrAborted = errors.New("process aborted")

// 📦 Request describes one subprocess invocation
type Request struct {
	Tool  string
	Args  []string
	Dir   string
	Env   map[string]string
	Stdin io.Reader

	// OnLine receives each stdout line as it is produced
	OnLine func(line string)
}

// 📬 Result is what a finished (or aborted) subprocess produced
type Result struct {
	ID       string
	ExitCode int
	Stdout   string
	Stderr   string
	Aborted  bool
	Duration time.Duration
}

// Failed reports whether the result should be treated as a failure. Any stderr
// output counts, whatever the exit code.
func (r *Result) Failed() bool {
	return r.Aborted || r.ExitCode != 0 || strings.TrimSpace(r.Stderr) != ""
}

// 🏃 Runner executes subprocesses
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// ExecRunner runs real processes through os/exec
type ExecRunner struct {
	// WaitDelay bounds how long output pipes are drained after a kill
	WaitDelay time.Duration
	// MaxLineSize caps a single stdout line; zero means DefaultMaxLineSize
	MaxLineSize int
}

// DefaultMaxLineSize is the longest stdout line ExecRunner keeps by default
const DefaultMaxLineSize = 4 * 1024 * 1024

var _ Runner = (*ExecRunner)(nil)

// 🏭 NewExecRunner creates a runner for real subprocesses
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 2 * time.Second}
}

// Run starts req.Tool and waits for it. A non-zero exit code is reported in the
// Result, not as an error; errors are reserved for processes that could not be
// started and for cancellation.
func (r *ExecRunner) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Tool == "" {
		return nil, errors.New("no tool given")
	}

	res := &Result{ID: uuid.NewString(), ExitCode: -1}
	logger := zerolog.Ctx(ctx).With().Str("invocation", res.ID).Str("tool", req.Tool).Logger()

	cmd := exec.CommandContext(ctx, req.Tool, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = mergeEnv(os.Environ(), req.Env)
	cmd.Stdin = req.Stdin
	cmd.WaitDelay = r.WaitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Errorf("creating stdout pipe: %w", err)
	}

	start := time.Now()
	logger.Debug().Strs("args", req.Args).Str("dir", req.Dir).Msg("starting process")

	if err := cmd.Start(); err != nil {
		return nil, errors.Errorf("starting %s: %w", req.Tool, err)
	}

	var stdout strings.Builder
	scanner := bufio.NewScanner(stdoutPipe)
	maxLine := r.MaxLineSize
	if maxLine <= 0 {
		maxLine = DefaultMaxLineSize
	}
	scanner.Buffer(make([]byte, min(64*1024, maxLine)), maxLine)
	for scanner.Scan() {
		line := scanner.Text()
		stdout.WriteString(line)
		stdout.WriteByte('\n')
		if req.OnLine != nil {
			req.OnLine(line)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, stdoutPipe)
	}

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil {
		res.Aborted = true
		logger.Debug().Dur("duration", res.Duration).Msg("process aborted")
		return res, errors.Errorf("running %s: %w", req.Tool, ErrAborted)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return res, errors.Errorf("waiting for %s: %w", req.Tool, waitErr)
	}
	if scanErr != nil {
		return res, errors.Errorf("reading %s output: %w", req.Tool, scanErr)
	}

	logger.Debug().
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Int("stderr_bytes", len(res.Stderr)).
		Msg("process finished")

	return res, nil
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := extra[name]; ok {
			continue
		}
		out = append(out, kv)
	}
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
