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


// Package extract turns raw chat export conversations into embeddable chunks.
//
// A conversation is a tree-shaped mapping of node id to node, where each node
// may carry a message built out of string or structured parts. The extractor
// walks the mapping in stored order, collects the usable text of each message,
// and renders the transcript as a single chunk with fixed metadata (title,
// message count, truncation flag). Malformed records degrade to defaults;
// extraction never fails on bad parts.
//
// The package also provides a lazy iter.Seq over a whole collection, with
// per-conversation failure isolation, and loaders for the bulk JSON export
// document.
package extract
