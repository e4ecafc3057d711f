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

package svn

import (
	"strings"

	"github.com/walteh/svnsync/pkg/status"
)

// DefaultBatchSize bounds how many paths go on one command line
const DefaultBatchSize = 20

// 🔐 LockMode selects how GetLock treats paths that are already locked
type LockMode int

const (
	// LockNormal only locks paths that are not locked yet
	LockNormal LockMode = iota
	// LockForce steals locks held elsewhere
	LockForce
)

func (m LockMode) String() string {
	if m == LockForce {
		return "force"
	}
	return "normal"
}

// 🤝 Resolution is the --accept choice used to resolve a conflict
type Resolution string

const (
	ResolveWorking        Resolution = "working"
	ResolveBase           Resolution = "base"
	ResolveMineFull       Resolution = "mine-full"
	ResolveTheirsFull     Resolution = "theirs-full"
	ResolveMineConflict   Resolution = "mine-conflict"
	ResolveTheirsConflict Resolution = "theirs-conflict"
)

// Valid reports whether svn accepts the resolution
func (r Resolution) Valid() bool {
	switch r {
	case ResolveWorking, ResolveBase, ResolveMineFull, ResolveTheirsFull, ResolveMineConflict, ResolveTheirsConflict:
		return true
	}
	return false
}

// Target escapes a path for the svn command line. svn reads the last '@' as a
// peg revision, so paths containing one get a trailing '@'.
func Target(path string) string {
	p := status.NormalizePath(path)
	if strings.Contains(p, "@") {
		return p + "@"
	}
	return p
}

// Targets escapes every path
func Targets(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = Target(p)
	}
	return out
}

// Global inserts the global options right after the subcommand
func Global(args []string, nonInteractive bool) []string {
	if !nonInteractive || len(args) == 0 {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0], "--non-interactive")
	return append(out, args[1:]...)
}

// 📋 StatusArgs queries the listed paths themselves, not their children
func StatusArgs(scope status.Scope, paths []string) []string {
	args := []string{"status", "--xml", "--verbose", "--depth=empty"}
	if scope == status.ScopeRemote {
		args = append(args, "--show-updates")
	}
	return append(args, Targets(paths)...)
}

func AddArgs(paths []string) []string {
	return append([]string{"add", "--depth=infinity"}, Targets(paths)...)
}

func RevertArgs(paths []string) []string {
	return append([]string{"revert", "--depth=infinity"}, Targets(paths)...)
}

func DeleteArgs(paths []string) []string {
	return append([]string{"delete", "--force"}, Targets(paths)...)
}

// CommitArgs commits paths, or the targets listed in targetsFile when it is set
func CommitArgs(message string, paths []string, targetsFile string) []string {
	args := []string{"commit", "--depth=empty", "--message", message}
	if targetsFile != "" {
		return append(args, "--targets", targetsFile)
	}
	return append(args, Targets(paths)...)
}

func LockArgs(paths []string, mode LockMode) []string {
	args := []string{"lock"}
	if mode == LockForce {
		args = append(args, "--force")
	}
	return append(args, Targets(paths)...)
}

func UnlockArgs(paths []string) []string {
	return append([]string{"unlock"}, Targets(paths)...)
}

func MoveArgs(from, to string) []string {
	return []string{"move", Target(from), Target(to)}
}

func ChangelistAddArgs(name string, paths []string) []string {
	return append([]string{"changelist", name}, Targets(paths)...)
}

func ChangelistRemoveArgs(paths []string) []string {
	return append([]string{"changelist", "--remove"}, Targets(paths)...)
}

func ResolveArgs(resolution Resolution, paths []string) []string {
	return append([]string{"resolve", "--accept", string(resolution)}, Targets(paths)...)
}

func CleanupArgs() []string {
	return []string{"cleanup"}
}

// UpdateArgs updates the whole working copy when no paths are given
func UpdateArgs(paths []string) []string {
	return append([]string{"update", "--accept", "postpone"}, Targets(paths)...)
}

// TargetsFile renders paths in the format read by --targets
func TargetsFile(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(Target(p))
		b.WriteByte('\n')
	}
	return b.String()
}
