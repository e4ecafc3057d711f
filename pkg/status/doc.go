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
Package status holds the per-path SVN status model and the in-memory cache the
synchronization engine reads from.

🎯 Purpose:
- Describes what svn reports for a path (file, property, remote, lock state)
- Tracks how fresh each answer is through the reflection level
- Serves concurrent readers while refreshes merge new results

🔄 Flow:
1. The engine marks requested paths Pending
2. A status call parses svn output into Records
3. Merge folds the Records into the cache under one lock
4. Readers call Get or Filter at any time

⚡ Key Responsibilities:
- Case-insensitive path lookup over interned keys
- Conflict promotion when a locally modified file changes on the server
- Console formatting and summaries for the CLI

🔍 Example:

	cache := status.NewCache(intern.NewStore())
	cache.Merge([]status.Record{{Path: "art/hero.png", FileStatus: status.FileModified}})

	rec := cache.Get("Art/Hero.png")
	fmt.Println(status.FormatRecord(rec))
*/
package status
