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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	modified := status.Record{Path: "Assets/hero.png", FileStatus: status.FileModified, LockStatus: status.LockedHere, Reflection: status.ReflectionLocal}

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_record",
			op: func(t *testing.T, logger *Logger) {
				logger.LogRecord(context.Background(), modified)
			},
			wantLogs: []string{
				strings.TrimSpace(status.FormatRecord(modified)),
			},
		},
		{
			name: "log_summary",
			op: func(t *testing.T, logger *Logger) {
				logger.LogRecord(context.Background(), modified)
				logger.LogSummary(status.Summarize([]status.Record{modified}))
			},
			wantLogs: []string{
				strings.TrimSpace(status.FormatRecord(modified)),
				"",
				"◆ 1 path: 1 modified, 1 locked here",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("status of 3 paths")
			},
			wantLogs: []string{
				"svnsync • status of 3 paths",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLogFailureHints(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{
			name:     "working_copy_locked",
			err:      svn.Classify("update", "svn: E155004: Run 'svn cleanup' to remove locks\n"),
			wantHint: "svnsync cleanup",
		},
		{
			name:     "out_of_date",
			err:      errors.Errorf("committing: %w", svn.Classify("commit", "svn: E155011: File 'a' is out of date\n")),
			wantHint: "svnsync update",
		},
		{
			name:     "locked_by_other",
			err:      svn.Classify("lock", "svn: warning: W160035: Path '/a' is already locked by user 'bob'\n"),
			wantHint: "--force",
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			logger.LogFailure(tt.err)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Equal(t, "❌ "+tt.err.Error(), lines[0])
			if tt.wantHint == "" {
				assert.Len(t, lines, 1)
				return
			}
			require.Len(t, lines, 2)
			assert.Contains(t, lines[1], tt.wantHint)
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := context.Background()
	ctx = NewContext(ctx, logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestUserLogger(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	buf := &bytes.Buffer{}
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	user := NewUserLogger(ctx, buf)

	user.LogOperation("add", []string{"a.txt"}, true, nil)
	user.LogOperation("commit", []string{"a.txt", "b.txt"}, false, nil)
	user.LogOperation("update", nil, false, errors.New("boom"))
	user.LogProgress("Sending        a.txt\n")
	user.LogProgress("<?xml version=\"1.0\"?>")
	user.LogProgress("   ")
	user.LogLock(true, "a.txt")
	user.LogLock(false, "a.txt")

	out := buf.String()
	assert.Contains(t, out, "add a.txt")
	assert.Contains(t, out, "commit 2 paths skipped")
	assert.Contains(t, out, "update working copy failed")
	assert.Contains(t, out, "Sending        a.txt")
	assert.NotContains(t, out, "<?xml")
	assert.Contains(t, out, "locked a.txt")
	assert.Contains(t, out, "released a.txt")
}
