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

/*
Package svn is the boundary between svnsync and the Subversion command line client.

🎯 Purpose:
- Builds argument lists for the svn subcommands the engine uses
- Parses `svn status --xml` output into status records
- Classifies svn stderr into a closed set of error kinds

Nothing above this package looks at raw svn output. Callers branch on error kinds
with errors.Is against the sentinels or with KindOf:

	ok, err := ops.GetLock(ctx, paths, svn.LockNormal)
	if errors.Is(err, svn.ErrLocalCopyLocked) {
		ops.Cleanup(ctx)
	}
*/
package svn
