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

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 40 // Base width for path
	statusWidth = 12 // Width for file status text
	lockWidth   = 14 // Width for lock text
)

// 🎯 Symbol returns the one-character marker svn prints for a file status
func Symbol(s FileStatus) string {
	switch s {
	case FileAdded:
		return "A"
	case FileModified, FileMerged:
		return "M"
	case FileDeleted:
		return "D"
	case FileMissing:
		return "!"
	case FileConflicted:
		return "C"
	case FileReplaced:
		return "R"
	case FileUnversioned:
		return "?"
	case FileIgnored:
		return "I"
	case FileExternal:
		return "X"
	case FileIncomplete, FileObstructed:
		return "~"
	default:
		return " "
	}
}

// 🖨️ FormatRecord renders one record as a console line
func FormatRecord(r Record) string {
	var prefix string
	switch r.FileStatus {
	case FileAdded:
		prefix = color.GreenString(Symbol(r.FileStatus))
	case FileModified, FileMerged, FileReplaced:
		prefix = color.YellowString(Symbol(r.FileStatus))
	case FileDeleted, FileMissing, FileConflicted, FileObstructed:
		prefix = color.RedString(Symbol(r.FileStatus))
	default:
		prefix = color.HiBlackString(Symbol(r.FileStatus))
	}

	lock := ""
	switch r.LockStatus {
	case LockedHere:
		lock = color.CyanString("%-*s", lockWidth, "K")
	case LockedOther:
		lock = color.MagentaString("%-*s", lockWidth, "O "+r.LockOwner)
	default:
		lock = fmt.Sprintf("%-*s", lockWidth, "")
	}

	remote := " "
	if r.RemoteStatus == RemoteModified {
		remote = color.RedString("*")
	}

	return fmt.Sprintf("%s%s%s %-*s %-*s %s%s",
		strings.Repeat(" ", fileIndent),
		prefix,
		remote,
		nameWidth, r.Path,
		statusWidth, r.FileStatus,
		lock,
		r.Reflection,
	)
}
