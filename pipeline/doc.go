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


// Package pipeline implements the batch embedding pipeline.
//
// A run extracts chunks from each conversation, embeds them through an
// ai.Provider in bounded batches, and persists the accumulated matrix and
// metadata through a storage.IndexWriter. Interim checkpoints are written at
// a fixed interval of processed conversations so a long run interrupted
// externally leaves usable partial state behind.
//
// Failure handling follows a skip-and-continue policy: a conversation that
// fails extraction or a chunk that fails embedding (after retries) is logged
// and dropped without unwinding the batch loop. The two accumulated
// collections, chunk summaries and embedding rows, only ever grow together,
// so positional alignment holds at every checkpoint and in the final index.
//
// The run aborts before any work if the embedding service fails its
// connectivity probe, and does not automatically resume from a prior
// checkpoint; resumption is a manual operation against a saved checkpoint.
package pipeline
