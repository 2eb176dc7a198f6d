// Copyright 2026 The SNFS Authors.
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

package common

// Protocol operation names, shared between internal/server (metrics and
// log lines) and internal/client (log lines) so the two sides of the
// wire agree on how an operation is spelled without either importing the
// other.
const (
	OpPing      = "PING"
	OpLookup    = "LOOKUP"
	OpRead      = "READ"
	OpWrite     = "WRITE"
	OpCreate    = "CREATE"
	OpMkdir     = "MKDIR"
	OpReaddir   = "READDIR"
	OpCopy      = "COPY"
	OpDebugDump = "DEBUG_DUMP"
)
