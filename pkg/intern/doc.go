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
Package intern deduplicates path-like strings into a shared token table.

	"Assets/Art/hero.png"  ->  [Assets][/][Art][/][hero][.][png]  ->  [0 1 2 1 3 4 5]

🎯 Purpose:
- Every distinct fragment is stored once in an append-only table
- A Key is the ordered list of fragment indices for one string
- Equality, hashing and prefix/suffix checks work on indices, not characters

🔪 Delimiters:
The recognized delimiters are '.', '/', '@' and '_'. Each delimiter is kept as its
own token so that Compose(Decompose(s)) == s holds for any input.

🔒 Concurrency:
Decompose holds one mutex for the whole intern-and-cache sequence. Compose and the
Key comparisons only read fragments whose index is already known and take no lock.
*/
package intern
