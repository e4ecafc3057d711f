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
	"bytes"
	"encoding/xml"
	"strconv"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
)

type xmlStatus struct {
	XMLName     xml.Name        `xml:"status"`
	Targets     []xmlTarget     `xml:"target"`
	Changelists []xmlChangelist `xml:"changelist"`
}

type xmlTarget struct {
	Path    string     `xml:"path,attr"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlChangelist struct {
	Name    string     `xml:"name,attr"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Path  string         `xml:"path,attr"`
	WC    xmlWCStatus    `xml:"wc-status"`
	Repos *xmlReposState `xml:"repos-status"`
}

type xmlWCStatus struct {
	Item           string     `xml:"item,attr"`
	Props          string     `xml:"props,attr"`
	Revision       string     `xml:"revision,attr"`
	TreeConflicted bool       `xml:"tree-conflicted,attr"`
	Commit         *xmlCommit `xml:"commit"`
	Lock           *xmlLock   `xml:"lock"`
}

type xmlReposState struct {
	Item  string   `xml:"item,attr"`
	Props string   `xml:"props,attr"`
	Lock  *xmlLock `xml:"lock"`
}

type xmlCommit struct {
	Revision string `xml:"revision,attr"`
}

type xmlLock struct {
	Token string `xml:"token"`
	Owner string `xml:"owner"`
}

// 🧩 ParseStatus decodes `svn status --xml` output. Every record is stamped with
// the reflection level a check at scope reaches. A document without entries is
// valid and yields no records.
func ParseStatus(data []byte, scope status.Scope) ([]status.Record, error) {
	var doc xmlStatus
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Errorf("%w: %s", ErrParse, err.Error())
	}

	records := make([]status.Record, 0)
	for _, t := range doc.Targets {
		for _, e := range t.Entries {
			records = append(records, toRecord(e, "", scope))
		}
	}
	for _, cl := range doc.Changelists {
		for _, e := range cl.Entries {
			records = append(records, toRecord(e, cl.Name, scope))
		}
	}
	return records, nil
}

func toRecord(e xmlEntry, changelist string, scope status.Scope) status.Record {
	r := status.Record{
		Path:           status.NormalizePath(e.Path),
		FileStatus:     status.ParseFileStatus(e.WC.Item),
		PropertyStatus: status.ParsePropertyStatus(e.WC.Props),
		Revision:       atoi(e.WC.Revision),
		Changelist:     changelist,
		TreeConflict:   e.WC.TreeConflicted,
		Reflection:     scope.Reflection(),
	}
	if e.WC.Commit != nil {
		r.LastChangedRevision = atoi(e.WC.Commit.Revision)
	}

	wcLock := e.WC.Lock
	switch {
	case e.Repos != nil:
		if e.Repos.Item != "" && e.Repos.Item != "none" {
			r.RemoteStatus = status.RemoteModified
		}
		if rl := e.Repos.Lock; rl != nil {
			if wcLock != nil && wcLock.Token == rl.Token {
				r.LockStatus = status.LockedHere
			} else {
				r.LockStatus = status.LockedOther
			}
			r.LockOwner = rl.Owner
			r.LockToken = rl.Token
		}
	case wcLock != nil:
		r.LockStatus = status.LockedHere
		r.LockOwner = wcLock.Owner
		r.LockToken = wcLock.Token
	}

	r.AllowLocalEdit = r.LockStatus != status.LockedOther
	return r
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
