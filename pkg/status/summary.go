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

import (
	"fmt"
	"strings"
)

// 📈 Summary counts records by the states a user cares about
type Summary struct {
	Total       int
	Modified    int
	Added       int
	Deleted     int
	Conflicted  int
	Unversioned int
	LockedHere  int
	LockedOther int
	OutOfDate   int
	Pending     int
}

// Summarize counts records
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		s.Total++
		switch r.FileStatus {
		case FileModified, FileMerged, FileReplaced:
			s.Modified++
		case FileAdded:
			s.Added++
		case FileDeleted, FileMissing:
			s.Deleted++
		case FileConflicted:
			s.Conflicted++
		case FileUnversioned:
			s.Unversioned++
		}
		switch r.LockStatus {
		case LockedHere:
			s.LockedHere++
		case LockedOther:
			s.LockedOther++
		}
		if r.RemoteStatus == RemoteModified {
			s.OutOfDate++
		}
		if r.Reflection == ReflectionPending {
			s.Pending++
		}
	}
	return s
}

// String formats the non-zero counters, e.g. "4 paths: 2 modified, 1 locked here"
func (s Summary) String() string {
	parts := []string{}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(s.Modified, "modified")
	add(s.Added, "added")
	add(s.Deleted, "deleted")
	add(s.Conflicted, "conflicted")
	add(s.Unversioned, "unversioned")
	add(s.LockedHere, "locked here")
	add(s.LockedOther, "locked by others")
	add(s.OutOfDate, "out of date")
	add(s.Pending, "pending")

	noun := "paths"
	if s.Total == 1 {
		noun = "path"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d %s: clean", s.Total, noun)
	}
	return fmt.Sprintf("%d %s: %s", s.Total, noun, strings.Join(parts, ", "))
}
