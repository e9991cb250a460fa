// Copyright 2025 Poiesic Systems
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


// Package search answers similarity queries over a persisted embedding index.
//
// The Engine loads an index once, normalizes the embedding matrix rows up
// front, and then serves three read-only operations:
//   - free-text search: embed the query, rank all entries by cosine
//     similarity, return the top k
//   - find-similar: rank entries against an already-indexed conversation,
//     excluding the conversation itself
//   - statistics: aggregate message-count and title figures for reporting
//
// Query-time failures (an unembeddable query, an unknown conversation ID)
// produce empty results rather than errors; only construction-time failures
// such as a missing index surface to the caller.
package search
