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

// Package process runs external command line tools and captures what they print.
//
// A Runner takes a Request (tool, arguments, working directory, extra
// environment, optional stdin) and returns a Result with the exit code and the
// text written to stdout and stderr. Stdout is streamed line by line to an
// optional callback while the process runs. Cancelling the context kills the
// process; the Result is then marked Aborted and Run returns ErrAborted.
package process
