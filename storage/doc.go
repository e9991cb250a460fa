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


// Package storage provides the storage abstraction layer for chatindex.
//
// This package defines the IndexStore interfaces that decouple storage
// implementation from the pipeline and search layers, along with the binary
// serialization helpers shared by all backends.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	store, err := file.NewStore(dir)  // returns storage.IndexStore interface
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to file-layout specifics
//   - Swappability: Easy to add alternative backends (object storage, in-memory)
//   - Testing: Consumers can use mock implementations without modification
//
// # Architecture
//
// The storage layer splits persistence into three roles:
//
//   - IndexWriter: durable writes from the embedding pipeline
//   - IndexReader: loads for search and statistics
//   - IndexStore: the combined contract backends implement
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific timeout
// requirements.
package storage
