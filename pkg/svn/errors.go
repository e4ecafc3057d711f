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
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind is the class of an svn failure
type Kind int

const (
	KindGeneric Kind = iota
	KindConnectionTimeout
	KindLocalCopyLocked
	KindLockedByOther
	KindOutOfDate
	KindNewerVersionOnServer
	KindMixedRevision
	KindMissingCredentials
	KindInvalidAssetPath
	KindCritical
)

var kindNames = map[Kind]string{
	KindGeneric:              "generic failure",
	KindConnectionTimeout:    "connection timeout",
	KindLocalCopyLocked:      "working copy locked",
	KindLockedByOther:        "locked by other",
	KindOutOfDate:            "out of date",
	KindNewerVersionOnServer: "newer version on server",
	KindMixedRevision:        "mixed revision",
	KindMissingCredentials:   "missing credentials",
	KindInvalidAssetPath:     "invalid asset path",
	KindCritical:             "critical",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// NeedsUpdate reports whether the working copy must be updated before retrying
func (k Kind) NeedsUpdate() bool {
	return k == KindOutOfDate || k == KindNewerVersionOnServer || k == KindMixedRevision
}

// ❌ Error is a classified svn failure
type Error struct {
	Kind    Kind
	Command string
	Stderr  string
}

func (e *Error) Error() string {
	msg := firstLine(e.Stderr)
	switch {
	case e.Command != "" && msg != "":
		return fmt.Sprintf("svn %s: %s: %s", e.Command, e.Kind, msg)
	case msg != "":
		return fmt.Sprintf("svn: %s: %s", e.Kind, msg)
	default:
		return "svn: " + e.Kind.String()
	}
}

// Is matches any Error of the same kind, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrGeneric              = &Error{Kind: KindGeneric}
	ErrConnectionTimeout    = &Error{Kind: KindConnectionTimeout}
	ErrLocalCopyLocked      = &Error{Kind: KindLocalCopyLocked}
	ErrLockedByOther        = &Error{Kind: KindLockedByOther}
	ErrOutOfDate            = &Error{Kind: KindOutOfDate}
	ErrNewerVersionOnServer = &Error{Kind: KindNewerVersionOnServer}
	ErrMixedRevision        = &Error{Kind: KindMixedRevision}
	ErrMissingCredentials   = &Error{Kind: KindMissingCredentials}
	ErrInvalidAssetPath     = &Error{Kind: KindInvalidAssetPath}
	ErrCritical             = &Error{Kind: KindCritical}
)

// ErrParse wraps malformed status output
var ErrParse = errors.New("malformed svn status output")

// matched in order; the first kind with a hit wins
var classifiers = []struct {
	kind     Kind
	patterns []string
}{
	{KindCritical, []string{"E155007", "E155036", "is not a working copy"}},
	{KindMissingCredentials, []string{"E215004", "E170001", "authorization failed", "authentication failed"}},
	{KindLocalCopyLocked, []string{"E155004", "E155037", "svn cleanup"}},
	{KindLockedByOther, []string{"W160035", "E160035", "already locked by user"}},
	{KindNewerVersionOnServer, []string{"W160042", "newer version"}},
	{KindOutOfDate, []string{"E155011", "E160028", "E170004", "out of date", "out-of-date"}},
	{KindMixedRevision, []string{"E195016", "mixed-revision"}},
	{KindInvalidAssetPath, []string{"E125001", "invalid control character"}},
	{KindConnectionTimeout, []string{"E170013", "E175002", "E670008", "E000110", "timed out", "unable to connect"}},
}

// 🔎 Classify turns svn stderr into a classified Error. Empty stderr yields nil.
func Classify(command, stderr string) *Error {
	if strings.TrimSpace(stderr) == "" {
		return nil
	}
	lower := strings.ToLower(stderr)
	for _, c := range classifiers {
		for _, p := range c.patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				return &Error{Kind: c.kind, Command: command, Stderr: stderr}
			}
		}
	}
	return &Error{Kind: KindGeneric, Command: command, Stderr: stderr}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindGeneric, false
}

// StripNotFoundWarnings removes the per-target "was not found" warnings svn status
// prints for paths that do not exist on disk or in the repository, along with
// the E200009 summary line that follows them
func StripNotFoundWarnings(stderr string) string {
	if stderr == "" {
		return stderr
	}
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "W155010") || strings.Contains(line, "E200009") || strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
