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

// Package testutils provides a scripted in-memory svn client for tests.
package testutils

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/process"
	"github.com/walteh/svnsync/pkg/status"
)

// FakeFile is the state of one path in the fake working copy
type FakeFile struct {
	Status         status.FileStatus
	Props          status.PropertyStatus
	Revision       int
	LockOwner      string
	LockToken      string
	RemoteModified bool
	Changelist     string
	TreeConflict   bool
}

type failure struct {
	subcommand string
	stderr     string
	remaining  int
}

// 🧪 FakeSVN is a process.Runner that answers svn subcommands from an in-memory
// working copy and records every invocation
type FakeSVN struct {
	User string

	// BeforeRun runs ahead of every invocation, outside the fake's lock
	BeforeRun func(ctx context.Context, args []string)

	mu          sync.Mutex
	files       map[string]*FakeFile
	invocations [][]string
	failures    []*failure
	revision    int
}

var _ process.Runner = (*FakeSVN)(nil)

// NewFakeSVN creates an empty working copy checked out by user
func NewFakeSVN(user string) *FakeSVN {
	return &FakeSVN{
		User:     user,
		files:    make(map[string]*FakeFile),
		revision: 1,
	}
}

// Set replaces the state of path
func (f *FakeSVN) Set(path string, file FakeFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file.Revision == 0 && file.Status.IsVersioned() {
		file.Revision = f.revision
	}
	cp := file
	f.files[status.NormalizePath(path)] = &cp
}

// File returns a copy of the state of path
func (f *FakeSVN) File(path string) (FakeFile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[status.NormalizePath(path)]
	if !ok {
		return FakeFile{}, false
	}
	return *file, true
}

// Fail makes the next times invocations of subcommand fail with stderr
func (f *FakeSVN) Fail(subcommand, stderr string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, &failure{subcommand: subcommand, stderr: stderr, remaining: times})
}

// Invocations returns every argument list run so far, global options removed
func (f *FakeSVN) Invocations() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.invocations))
	copy(out, f.invocations)
	return out
}

// InvocationsOf returns the invocations of one subcommand
func (f *FakeSVN) InvocationsOf(subcommand string) [][]string {
	out := [][]string{}
	for _, inv := range f.Invocations() {
		if len(inv) > 0 && inv[0] == subcommand {
			out = append(out, inv)
		}
	}
	return out
}

// ResetInvocations forgets the recorded invocations
func (f *FakeSVN) ResetInvocations() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invocations = nil
}

// Run implements process.Runner
func (f *FakeSVN) Run(ctx context.Context, req process.Request) (*process.Result, error) {
	args := make([]string, 0, len(req.Args))
	for _, a := range req.Args {
		if a != "--non-interactive" {
			args = append(args, a)
		}
	}
	if len(args) == 0 {
		return nil, errors.New("no subcommand")
	}

	if f.BeforeRun != nil {
		f.BeforeRun(ctx, args)
	}

	res := &process.Result{ID: uuid.NewString()}
	if ctx.Err() != nil {
		res.Aborted = true
		res.ExitCode = -1
		return res, errors.Errorf("running svn %s: %w", args[0], process.ErrAborted)
	}

	f.mu.Lock()
	f.invocations = append(f.invocations, args)
	stdout, stderr := f.dispatch(args)
	f.mu.Unlock()

	res.Stdout = stdout
	res.Stderr = stderr
	if stderr != "" && !strings.Contains(stderr, "warning:") {
		res.ExitCode = 1
	}
	if req.OnLine != nil && stdout != "" {
		for _, line := range strings.Split(strings.TrimSuffix(stdout, "\n"), "\n") {
			req.OnLine(line)
		}
	}
	return res, nil
}

func (f *FakeSVN) scriptedFailure(sub string) (string, bool) {
	for _, fl := range f.failures {
		if fl.subcommand == sub && fl.remaining > 0 {
			fl.remaining--
			return fl.stderr, true
		}
	}
	return "", false
}

type parsedArgs struct {
	flags   map[string]string
	targets []string
}

var valueFlags = map[string]bool{"--message": true, "--targets": true, "--accept": true}

func parse(args []string) parsedArgs {
	p := parsedArgs{flags: map[string]string{}}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case valueFlags[a] && i+1 < len(args):
			p.flags[a] = args[i+1]
			i++
		case strings.HasPrefix(a, "--"):
			name, val, _ := strings.Cut(a, "=")
			p.flags[name] = val
		default:
			p.targets = append(p.targets, unescape(a))
		}
	}
	return p
}

func unescape(target string) string {
	if strings.Contains(target, "@") {
		return strings.TrimSuffix(target, "@")
	}
	return target
}

func notFound(path string) string {
	return fmt.Sprintf("svn: warning: W155010: The node '%s' was not found.\n", path)
}

func (f *FakeSVN) dispatch(args []string) (string, string) {
	sub := args[0]
	if stderr, ok := f.scriptedFailure(sub); ok {
		return "", stderr
	}

	p := parse(args[1:])
	if file, ok := p.flags["--targets"]; ok {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Sprintf("svn: E000002: Can't open file '%s': %v\n", file, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				p.targets = append(p.targets, unescape(strings.TrimSpace(line)))
			}
		}
	}

	switch sub {
	case "status":
		return f.status(p)
	case "add":
		return f.each(p.targets, "A", func(path string, file *FakeFile) string {
			if file.Status != status.FileUnversioned {
				return fmt.Sprintf("svn: warning: W150002: '%s' is already under version control\n", path)
			}
			file.Status = status.FileAdded
			return ""
		})
	case "revert":
		out := []string{}
		for _, path := range p.targets {
			file, ok := f.files[path]
			if !ok || !file.Status.IsVersioned() {
				continue
			}
			switch file.Status {
			case status.FileAdded:
				file.Status = status.FileUnversioned
			case status.FileNormal:
				continue
			default:
				file.Status = status.FileNormal
			}
			file.TreeConflict = false
			file.Props = status.PropertyNone
			out = append(out, fmt.Sprintf("Reverted '%s'", path))
		}
		return lines(out), ""
	case "delete":
		return f.each(p.targets, "D", func(path string, file *FakeFile) string {
			if !file.Status.IsVersioned() {
				return fmt.Sprintf("svn: E200005: '%s' is not under version control\n", path)
			}
			file.Status = status.FileDeleted
			return ""
		})
	case "commit":
		return f.commit(p)
	case "lock":
		return f.lock(p)
	case "unlock":
		return f.each(p.targets, "'%s' unlocked.", func(path string, file *FakeFile) string {
			if file.LockOwner != f.User {
				return fmt.Sprintf("svn: warning: W160040: No lock on path '%s'\n", path)
			}
			file.LockOwner, file.LockToken = "", ""
			return ""
		})
	case "move":
		if len(p.targets) != 2 {
			return "", "svn: E205001: Try 'svn help move' for more information\n"
		}
		from, to := p.targets[0], p.targets[1]
		file, ok := f.files[from]
		if !ok || !file.Status.IsVersioned() {
			return "", fmt.Sprintf("svn: E200005: '%s' is not under version control\n", from)
		}
		moved := *file
		moved.Status = status.FileAdded
		f.files[to] = &moved
		file.Status = status.FileDeleted
		return fmt.Sprintf("A         %s\nD         %s\n", to, from), ""
	case "changelist":
		_, remove := p.flags["--remove"]
		targets := p.targets
		name := ""
		if !remove && len(targets) > 0 {
			name, targets = targets[0], targets[1:]
		}
		return f.each(targets, "A [cl]", func(path string, file *FakeFile) string {
			file.Changelist = name
			return ""
		})
	case "resolve":
		return f.each(p.targets, "Resolved conflicted state of '%s'", func(path string, file *FakeFile) string {
			if file.Status == status.FileConflicted {
				file.Status = status.FileModified
			}
			file.TreeConflict = false
			return ""
		})
	case "cleanup":
		return "", ""
	case "update":
		return f.update(p)
	}
	return "", fmt.Sprintf("svn: E205000: Unknown subcommand: '%s'\n", sub)
}

// each applies fn to every known target and reports unknown ones
func (f *FakeSVN) each(targets []string, verb string, fn func(path string, file *FakeFile) string) (string, string) {
	var out []string
	var stderr strings.Builder
	for _, path := range targets {
		file, ok := f.files[path]
		if !ok {
			stderr.WriteString(notFound(path))
			continue
		}
		if msg := fn(path, file); msg != "" {
			stderr.WriteString(msg)
			continue
		}
		if strings.Contains(verb, "%s") {
			out = append(out, fmt.Sprintf(verb, path))
		} else {
			out = append(out, fmt.Sprintf("%-10s%s", verb, path))
		}
	}
	return lines(out), stderr.String()
}

func (f *FakeSVN) status(p parsedArgs) (string, string) {
	_, remote := p.flags["--show-updates"]

	var b strings.Builder
	var stderr strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<status>\n")
	changelists := map[string][]string{}
	for _, path := range p.targets {
		file, ok := f.files[path]
		if !ok {
			stderr.WriteString(notFound(path))
			continue
		}
		if file.Changelist != "" {
			changelists[file.Changelist] = append(changelists[file.Changelist], entryXML(path, file, f.User, remote))
			continue
		}
		fmt.Fprintf(&b, "<target path=\"%s\">\n%s</target>\n", path, entryXML(path, file, f.User, remote))
	}
	names := make([]string, 0, len(changelists))
	for name := range changelists {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "<changelist name=\"%s\">\n%s</changelist>\n", name, strings.Join(changelists[name], ""))
	}
	if remote {
		fmt.Fprintf(&b, "<against revision=\"%d\"/>\n", f.revision)
	}
	b.WriteString("</status>\n")
	return b.String(), stderr.String()
}

func entryXML(path string, file *FakeFile, user string, remote bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<entry path=\"%s\">\n", path)

	fmt.Fprintf(&b, "<wc-status item=\"%s\" props=\"%s\"", file.Status, file.Props)
	if file.Status.IsVersioned() {
		fmt.Fprintf(&b, " revision=\"%d\"", file.Revision)
	}
	if file.TreeConflict {
		b.WriteString(" tree-conflicted=\"true\"")
	}
	b.WriteString(">\n")
	if file.Status.IsVersioned() {
		fmt.Fprintf(&b, "<commit revision=\"%d\"><author>%s</author></commit>\n", file.Revision, user)
	}
	if file.LockOwner == user && file.LockToken != "" {
		fmt.Fprintf(&b, "<lock><token>%s</token><owner>%s</owner></lock>\n", file.LockToken, file.LockOwner)
	}
	b.WriteString("</wc-status>\n")

	if remote {
		item := "none"
		if file.RemoteModified {
			item = "modified"
		}
		fmt.Fprintf(&b, "<repos-status item=\"%s\" props=\"none\">\n", item)
		if file.LockOwner != "" {
			fmt.Fprintf(&b, "<lock><token>%s</token><owner>%s</owner></lock>\n", file.LockToken, file.LockOwner)
		}
		b.WriteString("</repos-status>\n")
	}

	b.WriteString("</entry>\n")
	return b.String()
}

func (f *FakeSVN) commit(p parsedArgs) (string, string) {
	var stderr strings.Builder
	for _, path := range p.targets {
		file, ok := f.files[path]
		if !ok {
			stderr.WriteString(notFound(path))
			continue
		}
		if file.RemoteModified {
			return "", fmt.Sprintf("svn: E155011: File '%s' is out of date\n", path)
		}
		if file.LockOwner != "" && file.LockOwner != f.User {
			return "", fmt.Sprintf("svn: E195022: File '%s' is locked in another working copy\n", path)
		}
	}
	if stderr.Len() > 0 {
		return "", stderr.String()
	}

	f.revision++
	var out []string
	for _, path := range p.targets {
		file := f.files[path]
		switch file.Status {
		case status.FileAdded:
			out = append(out, "Adding         "+path)
		case status.FileModified, status.FileReplaced, status.FileMerged:
			out = append(out, "Sending        "+path)
		case status.FileDeleted:
			out = append(out, "Deleting       "+path)
			delete(f.files, path)
			continue
		default:
			continue
		}
		file.Status = status.FileNormal
		file.Props = status.PropertyNone
		file.Revision = f.revision
		file.Changelist = ""
		if file.LockOwner == f.User {
			file.LockOwner, file.LockToken = "", ""
		}
	}
	out = append(out, fmt.Sprintf("Committed revision %d.", f.revision))
	return lines(out), ""
}

func (f *FakeSVN) lock(p parsedArgs) (string, string) {
	_, force := p.flags["--force"]
	var out []string
	var stderr strings.Builder
	for _, path := range p.targets {
		file, ok := f.files[path]
		switch {
		case !ok:
			stderr.WriteString(notFound(path))
		case !file.Status.IsVersioned():
			fmt.Fprintf(&stderr, "svn: warning: W155010: The node '%s' was not found.\n", path)
		case file.LockOwner != "" && file.LockOwner != f.User && !force:
			fmt.Fprintf(&stderr, "svn: warning: W160035: Path '/%s' is already locked by user '%s' in filesystem '/repo/db'\n", path, file.LockOwner)
		case file.RemoteModified:
			fmt.Fprintf(&stderr, "svn: warning: W160042: Lock failed: newer version of '/%s' exists\n", path)
		default:
			file.LockOwner = f.User
			file.LockToken = "opaquelocktoken:" + uuid.NewString()
			out = append(out, fmt.Sprintf("'%s' locked by user '%s'.", path, f.User))
		}
	}
	return lines(out), stderr.String()
}

func (f *FakeSVN) update(p parsedArgs) (string, string) {
	targets := p.targets
	if len(targets) == 0 {
		for path := range f.files {
			targets = append(targets, path)
		}
		sort.Strings(targets)
	}
	var out []string
	for _, path := range targets {
		file, ok := f.files[path]
		if !ok || !file.RemoteModified {
			continue
		}
		file.RemoteModified = false
		file.Revision = f.revision
		if file.Status == status.FileModified {
			file.Status = status.FileConflicted
			out = append(out, "C    "+path)
		} else {
			out = append(out, "U    "+path)
		}
	}
	out = append(out, fmt.Sprintf("At revision %d.", f.revision))
	return lines(out), ""
}

func lines(out []string) string {
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
