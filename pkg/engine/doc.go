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
Package engine keeps the svn status cache up to date.

🎯 Purpose:
- Owns the status cache and two deduplicated request queues (local, remote)
- Runs a background refresh loop that drains the queues on every tick
- Serializes every svn invocation behind one operation lock
- Classifies svn failures once, at the subprocess boundary

🔒 Locks:
- cache lock (inside status.Cache): every record read and write
- queue lock: the two request queues
- operation lock: held for the duration of one svn invocation

The queue lock and the cache lock are never held together, and no lock but the
operation lock is held while svn runs, so status reads stay available while a
mutation is in flight.

🔍 Example:

	eng, err := engine.New(engine.Options{Runner: process.NewExecRunner(), WorkingDir: wc})
	if err != nil {
		return err
	}
	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Close(ctx)

	eng.RequestStatus([]string{"art/hero.png"}, status.ScopeRemote)
*/
package engine
