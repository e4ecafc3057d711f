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
Package operation defines the capability surface of svnsync and the decorators
that filter requests before they reach the synchronization engine.

🎯 Purpose:
- One interface, Operations, covers every status query and svn mutation
- Decorators wrap exactly one inner Operations and only rewrite path lists
- Redundant or invalid svn calls never leave the pipeline

🔄 Flow:
1. A caller holds the outermost decorator
2. Each decorator narrows or expands the path list and delegates
3. The engine at the bottom runs svn and updates the status cache

⚡ Decorators:
- NewIgnoreFilter: drops paths matching configured globs
- NewLogging: logs each operation and its outcome
- NewSidecarFilter: keeps companion files in lock-step with their assets
- NewStatusFilter: drops requests the cached status already satisfies

Decorators never run svn themselves. A forwarded list that ends up empty is a
successful no-op.

🔍 Example:

	ignore, err := operation.NewIgnoreFilter(patterns)
	if err != nil {
		return err
	}
	ops := operation.Chain(eng,
		ignore,
		operation.NewLogging(&logger),
		operation.NewSidecarFilter(store, ".meta"),
		operation.NewStatusFilter(),
	)
	ok, err := ops.Add(ctx, []string{"art/hero.png"})
*/
package operation
