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

package status

// 📊 FileStatus is the working-copy state of one path
type FileStatus int

const (
	FileNone FileStatus = iota
	FileUnversioned
	FileAdded
	FileNormal
	FileModified
	FileDeleted
	FileMissing
	FileConflicted
	FileReplaced
	FileIgnored
	FileExternal
	FileIncomplete
	FileMerged
	FileObstructed
)

var fileStatusNames = map[FileStatus]string{
	FileNone:        "none",
	FileUnversioned: "unversioned",
	FileAdded:       "added",
	FileNormal:      "normal",
	FileModified:    "modified",
	FileDeleted:     "deleted",
	FileMissing:     "missing",
	FileConflicted:  "conflicted",
	FileReplaced:    "replaced",
	FileIgnored:     "ignored",
	FileExternal:    "external",
	FileIncomplete:  "incomplete",
	FileMerged:      "merged",
	FileObstructed:  "obstructed",
}

// String returns the name svn uses for the item state
func (s FileStatus) String() string {
	if name, ok := fileStatusNames[s]; ok {
		return name
	}
	return "none"
}

// ParseFileStatus maps an svn item state onto a FileStatus; unknown names map to FileNone
func ParseFileStatus(item string) FileStatus {
	for s, name := range fileStatusNames {
		if name == item {
			return s
		}
	}
	return FileNone
}

// IsVersioned reports whether svn tracks the path
func (s FileStatus) IsVersioned() bool {
	switch s {
	case FileNone, FileUnversioned, FileIgnored:
		return false
	default:
		return true
	}
}

// 🌐 RemoteStatus is the repository-side state reported by a remote status check
type RemoteStatus int

const (
	RemoteUnmodified RemoteStatus = iota
	RemoteModified
)

// String returns a string representation of RemoteStatus
func (s RemoteStatus) String() string {
	if s == RemoteModified {
		return "modified"
	}
	return "unmodified"
}

// 🔒 LockStatus tells who holds the repository lock on a path
type LockStatus int

const (
	LockNone LockStatus = iota
	LockedHere
	LockedOther
)

// String returns a string representation of LockStatus
func (s LockStatus) String() string {
	switch s {
	case LockedHere:
		return "locked-here"
	case LockedOther:
		return "locked-other"
	default:
		return "none"
	}
}

// 🏷️ PropertyStatus is the state of the path's versioned properties
type PropertyStatus int

const (
	PropertyNone PropertyStatus = iota
	PropertyNormal
	PropertyModified
	PropertyConflicted
)

// String returns a string representation of PropertyStatus
func (s PropertyStatus) String() string {
	switch s {
	case PropertyNormal:
		return "normal"
	case PropertyModified:
		return "modified"
	case PropertyConflicted:
		return "conflicted"
	default:
		return "none"
	}
}

// ParsePropertyStatus maps an svn props attribute onto a PropertyStatus
func ParsePropertyStatus(props string) PropertyStatus {
	switch props {
	case "normal":
		return PropertyNormal
	case "modified":
		return PropertyModified
	case "conflicted":
		return PropertyConflicted
	default:
		return PropertyNone
	}
}

// 🪞 Reflection is how fresh a cached record is
type Reflection int

const (
	ReflectionNone Reflection = iota
	ReflectionPending
	ReflectionLocal
	ReflectionRepository
)

// String returns a string representation of Reflection
func (r Reflection) String() string {
	switch r {
	case ReflectionPending:
		return "pending"
	case ReflectionLocal:
		return "local"
	case ReflectionRepository:
		return "repository"
	default:
		return "none"
	}
}

// 🔭 Scope selects whether a status check consults the repository
type Scope int

const (
	// ScopePrevious reuses whatever scope the path was last reflected at
	ScopePrevious Scope = iota
	ScopeLocal
	ScopeRemote
)

// String returns a string representation of Scope
func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeRemote:
		return "remote"
	default:
		return "previous"
	}
}

// Reflection returns the level a completed check at this scope reaches
func (s Scope) Reflection() Reflection {
	if s == ScopeRemote {
		return ReflectionRepository
	}
	return ReflectionLocal
}

// 📄 Record is the cached status of one path
type Record struct {
	Path                string         `json:"path"`
	FileStatus          FileStatus     `json:"file_status"`
	PropertyStatus      PropertyStatus `json:"property_status"`
	RemoteStatus        RemoteStatus   `json:"remote_status"`
	LockStatus          LockStatus     `json:"lock_status"`
	LockOwner           string         `json:"lock_owner,omitempty"`
	LockToken           string         `json:"lock_token,omitempty"`
	Revision            int            `json:"revision"`
	LastChangedRevision int            `json:"last_changed_revision"`
	Changelist          string         `json:"changelist,omitempty"`
	TreeConflict        bool           `json:"tree_conflict,omitempty"`
	AllowLocalEdit      bool           `json:"allow_local_edit"`
	Reflection          Reflection     `json:"reflection"`
}

// NewRecord returns the default record for a path nobody has asked about yet
func NewRecord(path string) Record {
	return Record{Path: path, FileStatus: FileNone}
}

// IsLocked reports whether anyone holds a lock on the path
func (r Record) IsLocked() bool {
	return r.LockStatus != LockNone
}

// HasLocalChanges reports whether a commit would send something for the path
func (r Record) HasLocalChanges() bool {
	switch r.FileStatus {
	case FileAdded, FileModified, FileDeleted, FileReplaced, FileMerged:
		return true
	}
	return r.PropertyStatus == PropertyModified
}
