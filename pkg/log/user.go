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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger tells the user what an operation did
type UserLogger struct {
	log zerolog.Logger
	out io.Writer
}

// 🎯 NewUserLogger creates a user logger writing to out, or stdout when nil
func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	if out == nil {
		out = os.Stdout
	}
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

// 📝 LogOperation reports the outcome of one operation over paths
func (u *UserLogger) LogOperation(operation string, paths []string, ok bool, err error) {
	target := describe(paths)
	switch {
	case err != nil:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(u.out).Printfln("%s %s failed", operation, target)
		u.log.Error().Err(err).Str("operation", operation).Strs("paths", paths).Msg("operation failed")
	case !ok:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏭️"}).WithWriter(u.out).Printfln("%s %s skipped", operation, target)
		u.log.Warn().Str("operation", operation).Strs("paths", paths).Msg("operation skipped")
	default:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"}).WithWriter(u.out).Printfln("%s %s", operation, target)
		u.log.Info().Str("operation", operation).Strs("paths", paths).Msg("operation done")
	}
}

// 📦 LogProgress echoes a line svn printed while working
func (u *UserLogger) LogProgress(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "<") {
		return
	}
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).WithWriter(u.out).Println(line)
}

// 🔒 LogLock reports a lock change on path
func (u *UserLogger) LogLock(acquired bool, path string) {
	if acquired {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "🔒"}).WithWriter(u.out).Printfln("locked %s", path)
		u.log.Debug().Msgf("Acquired lock on %s", path)
		return
	}
	pterm.Info.WithPrefix(pterm.Prefix{Text: "🔓"}).WithWriter(u.out).Printfln("released %s", path)
	u.log.Debug().Msgf("Released lock on %s", path)
}

func describe(paths []string) string {
	switch len(paths) {
	case 0:
		return "working copy"
	case 1:
		return paths[0]
	default:
		return fmt.Sprintf("%d paths", len(paths))
	}
}
