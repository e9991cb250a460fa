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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunkLength indicates a non-positive maximum chunk length.
	ErrInvalidChunkLength = errors.New("maximum chunk length must be positive")

	// ErrRaggedMatrix indicates embedding rows of differing dimensions.
	ErrRaggedMatrix = errors.New("embedding rows must share one dimension")

	// ErrNegativeDimension indicates a serialized matrix with negative dimensions.
	ErrNegativeDimension = errors.New("matrix dimensions cannot be negative")
)
