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


package extract

import (
	"iter"

	"github.com/poiesic/chatindex/core"
)

// Chunks returns a lazy, single-pass sequence of chunks over the collection.
// A failure while extracting one conversation is logged and that conversation
// is skipped; extraction of the remaining conversations continues.
func (e *Extractor) Chunks(conversations []core.Conversation) iter.Seq[core.Chunk] {
	return func(yield func(core.Chunk) bool) {
		for i := range conversations {
			chunks, err := e.Extract(&conversations[i])
			if err != nil {
				e.logger.Error("error extracting conversation", "index", i, "err", err)
				continue
			}
			for _, chunk := range chunks {
				if !yield(chunk) {
					return
				}
			}
		}
	}
}
