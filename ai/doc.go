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


// Package ai provides abstractions for the embedding service used by chatindex.
//
// The pipeline and search engine depend on the Embedder and Provider
// interfaces rather than concrete implementations, so the embedding backend
// can be swapped and business logic tested without a running model server.
//
// # Implementation Packages
//
//   - ai/ollama: production implementation backed by an Ollama server
//   - ai/mock: deterministic test doubles with injectable behavior
//
// Public constructors (ollama.NewProvider, ollama.NewEmbedder) return
// interface types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder, mock.NewMockProvider) return concrete types so tests
// can inject behavior and assert call counts.
//
// # Usage Example
//
//	provider, err := ollama.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
package ai
