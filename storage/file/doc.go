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


// Package file implements storage.IndexStore on flat files in a directory.
//
// Artifacts in the index directory:
//
//	embeddings_matrix.bin        dense float32 embedding matrix
//	embeddings_metadata.json     chunk metadata and index totals
//	embeddings_snapshot.bin      full binary snapshot of the last run
//	embeddings_checkpoint_N.bin  interim checkpoint after N conversations
//
// The matrix and metadata files carry positionally aligned entries: row i of
// the matrix is the embedding for chunk i of the metadata. Loads verify this
// alignment and fail with storage.ErrInconsistentIndex when it is broken.
//
// All writes go through a temp file and rename in the same directory, so a
// crash mid-write never leaves a partially written artifact behind.
package file
