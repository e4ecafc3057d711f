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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
)

const localStatusXML = `<?xml version="1.0" encoding="UTF-8"?>
<status>
<target path="art/hero.png">
<entry path="art/hero.png">
<wc-status item="modified" props="none" revision="12">
<commit revision="9"><author>alice</author><date>2025-01-02T03:04:05.000000Z</date></commit>
<lock><token>opaquelocktoken:abc</token><owner>alice</owner><created>2025-01-02T03:04:05.000000Z</created></lock>
</wc-status>
</entry>
</target>
<target path="new.txt">
<entry path="new.txt">
<wc-status item="unversioned" props="none"></wc-status>
</entry>
</target>
<target path="broken.txt">
<entry path="broken.txt">
<wc-status item="missing" props="none" revision="3" tree-conflicted="true"></wc-status>
</entry>
</target>
<changelist name="review">
<entry path="docs/readme.md">
<wc-status item="normal" props="modified" revision="12">
<commit revision="4"></commit>
</wc-status>
</entry>
</changelist>
</status>
`

const remoteStatusXML = `<?xml version="1.0" encoding="UTF-8"?>
<status>
<target path="mine.png">
<entry path="mine.png">
<wc-status item="normal" props="none" revision="5">
<lock><token>opaquelocktoken:mine</token><owner>me</owner></lock>
</wc-status>
<repos-status item="none" props="none">
<lock><token>opaquelocktoken:mine</token><owner>me</owner></lock>
</repos-status>
</entry>
</target>
<target path="theirs.png">
<entry path="theirs.png">
<wc-status item="normal" props="none" revision="5"></wc-status>
<repos-status item="modified" props="none">
<lock><token>opaquelocktoken:bob</token><owner>bob</owner></lock>
</repos-status>
</entry>
</target>
<target path="stolen.png">
<entry path="stolen.png">
<wc-status item="normal" props="none" revision="5">
<lock><token>opaquelocktoken:old</token><owner>me</owner></lock>
</wc-status>
<repos-status item="none" props="none"></repos-status>
</entry>
</target>
</status>
`

func TestParseStatusLocal(t *testing.T) {
	records, err := ParseStatus([]byte(localStatusXML), status.ScopeLocal)
	require.NoError(t, err)
	require.Len(t, records, 4)

	hero := records[0]
	assert.Equal(t, "art/hero.png", hero.Path)
	assert.Equal(t, status.FileModified, hero.FileStatus)
	assert.Equal(t, 12, hero.Revision)
	assert.Equal(t, 9, hero.LastChangedRevision)
	assert.Equal(t, status.LockedHere, hero.LockStatus)
	assert.Equal(t, "alice", hero.LockOwner)
	assert.Equal(t, "opaquelocktoken:abc", hero.LockToken)
	assert.True(t, hero.AllowLocalEdit)
	assert.Equal(t, status.ReflectionLocal, hero.Reflection)

	assert.Equal(t, status.FileUnversioned, records[1].FileStatus)

	broken := records[2]
	assert.Equal(t, status.FileMissing, broken.FileStatus)
	assert.True(t, broken.TreeConflict)

	readme := records[3]
	assert.Equal(t, "docs/readme.md", readme.Path)
	assert.Equal(t, "review", readme.Changelist)
	assert.Equal(t, status.PropertyModified, readme.PropertyStatus)
	assert.Equal(t, 4, readme.LastChangedRevision)
}

func TestParseStatusRemote(t *testing.T) {
	records, err := ParseStatus([]byte(remoteStatusXML), status.ScopeRemote)
	require.NoError(t, err)
	require.Len(t, records, 3)

	tests := []struct {
		name       string
		record     status.Record
		lock       status.LockStatus
		owner      string
		remote     status.RemoteStatus
		allowEdits bool
	}{
		{name: "locked here", record: records[0], lock: status.LockedHere, owner: "me", remote: status.RemoteUnmodified, allowEdits: true},
		{name: "locked by other and modified", record: records[1], lock: status.LockedOther, owner: "bob", remote: status.RemoteModified, allowEdits: false},
		{name: "local lock no longer in repository", record: records[2], lock: status.LockNone, remote: status.RemoteUnmodified, allowEdits: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lock, tt.record.LockStatus)
			assert.Equal(t, tt.owner, tt.record.LockOwner)
			assert.Equal(t, tt.remote, tt.record.RemoteStatus)
			assert.Equal(t, tt.allowEdits, tt.record.AllowLocalEdit)
			assert.Equal(t, status.ReflectionRepository, tt.record.Reflection)
		})
	}
}

func TestParseStatusEmptyDocument(t *testing.T) {
	records, err := ParseStatus([]byte(`<?xml version="1.0"?><status></status>`), status.ScopeLocal)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseStatusMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "truncated", data: `<status><target path="a"><entry path="a">`},
		{name: "wrong root", data: `<info></info>`},
		{name: "empty", data: ``},
		{name: "not xml", data: `svn: E155007: '/tmp' is not a working copy`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatus([]byte(tt.data), status.ScopeLocal)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		kind   Kind
	}{
		{name: "timeout", stderr: "svn: E170013: Unable to connect to a repository at URL 'https://svn'\nsvn: E000110: Connection timed out", kind: KindConnectionTimeout},
		{name: "working copy locked", stderr: "svn: E155004: Run 'svn cleanup' to remove locks (type 'svn help cleanup' for details)", kind: KindLocalCopyLocked},
		{name: "locked by other", stderr: "svn: warning: W160035: Path '/trunk/a.png' is already locked by user 'bob' in filesystem '/repo/db'", kind: KindLockedByOther},
		{name: "out of date", stderr: "svn: E155011: File '/wc/a.txt' is out of date", kind: KindOutOfDate},
		{name: "newer version", stderr: "svn: warning: W160042: Lock failed: newer version of '/trunk/a.png' exists", kind: KindNewerVersionOnServer},
		{name: "mixed revision", stderr: "svn: E195016: Cannot move mixed-revision subtree", kind: KindMixedRevision},
		{name: "credentials", stderr: "svn: E215004: No more credentials or we tried too many times.", kind: KindMissingCredentials},
		{name: "invalid path", stderr: "svn: E125001: Invalid control character '0x01' in path", kind: KindInvalidAssetPath},
		{name: "not a working copy", stderr: "svn: E155007: '/tmp' is not a working copy", kind: KindCritical},
		{name: "unknown", stderr: "svn: E999999: something new", kind: KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify("lock", tt.stderr)
			require.NotNil(t, e)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.stderr, e.Stderr)
			assert.Contains(t, e.Error(), "svn lock")
		})
	}

	assert.Nil(t, Classify("status", "  \n"))
}

func TestErrorMatching(t *testing.T) {
	var err error = Classify("lock", "svn: warning: W160035: Path 'a' is already locked by user 'bob'")
	wrapped := errors.Errorf("locking: %w", err)

	assert.True(t, errors.Is(wrapped, ErrLockedByOther))
	assert.False(t, errors.Is(wrapped, ErrOutOfDate))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindLockedByOther, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, KindOutOfDate.NeedsUpdate())
	assert.False(t, KindLockedByOther.NeedsUpdate())
}

func TestStripNotFoundWarnings(t *testing.T) {
	in := "svn: warning: W155010: The node '/wc/gone.txt' was not found.\n\nsvn: E200009: Could not display status of all targets\n"
	assert.Equal(t, "", StripNotFoundWarnings(in))
	in = "svn: warning: W155010: The node '/wc/gone.txt' was not found.\nsvn: E155037: Previous operation has not finished\n"
	assert.Equal(t, "svn: E155037: Previous operation has not finished", StripNotFoundWarnings(in))
	assert.Equal(t, "", StripNotFoundWarnings("svn: warning: W155010: The node 'x' was not found.\n"))
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{name: "local status", args: StatusArgs(status.ScopeLocal, []string{"a.txt"}), expected: []string{"status", "--xml", "--verbose", "--depth=empty", "a.txt"}},
		{name: "remote status", args: StatusArgs(status.ScopeRemote, []string{"a.txt"}), expected: []string{"status", "--xml", "--verbose", "--depth=empty", "--show-updates", "a.txt"}},
		{name: "peg escape", args: AddArgs([]string{"icons/btn@2x.png"}), expected: []string{"add", "--depth=infinity", "icons/btn@2x.png@"}},
		{name: "force lock", args: LockArgs([]string{"a"}, LockForce), expected: []string{"lock", "--force", "a"}},
		{name: "normal lock", args: LockArgs([]string{"a"}, LockNormal), expected: []string{"lock", "a"}},
		{name: "commit with targets file", args: CommitArgs("msg", nil, "/tmp/t"), expected: []string{"commit", "--depth=empty", "--message", "msg", "--targets", "/tmp/t"}},
		{name: "changelist remove", args: ChangelistRemoveArgs([]string{"a"}), expected: []string{"changelist", "--remove", "a"}},
		{name: "resolve", args: ResolveArgs(ResolveTheirsFull, []string{"a"}), expected: []string{"resolve", "--accept", "theirs-full", "a"}},
		{name: "move", args: MoveArgs("./a", "b/"), expected: []string{"move", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.args)
		})
	}

	assert.Equal(t, []string{"cleanup", "--non-interactive"}, Global(CleanupArgs(), true))
	assert.Equal(t, []string{"cleanup"}, Global(CleanupArgs(), false))
	assert.Equal(t, "a\nb@2x@\n", TargetsFile([]string{"a", "b@2x"}))
	assert.True(t, ResolveWorking.Valid())
	assert.False(t, Resolution("yours").Valid())
}
