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


package storage

import (
	"errors"
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/chatindex/core"
)

// wrapDecodeErr maps a mus decode failure onto the storage taxonomy: an
// exhausted byte slice means the artifact was cut short mid-write, anything
// else is a malformed encoding.
func wrapDecodeErr(err error) error {
	if errors.Is(err, mus.ErrTooSmallByteSlice) {
		return fmt.Errorf("%w: %v", ErrTruncatedData, err)
	}
	return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
}

// MarshalMatrix serializes an embedding matrix to bytes.
// Returns ErrSerializationFailed if rows differ in dimension.
func MarshalMatrix(m [][]float32) ([]byte, error) {
	if err := core.MatrixMUS.Validate(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	buf := make([]byte, core.MatrixMUS.Size(m))
	core.MatrixMUS.Marshal(m, buf)
	return buf, nil
}

// UnmarshalMatrix deserializes an embedding matrix from bytes.
// Returns ErrTruncatedData if the encoding ends before the declared rows.
func UnmarshalMatrix(data []byte) ([][]float32, error) {
	m, _, err := core.MatrixMUS.Unmarshal(data)
	if err != nil {
		return nil, wrapDecodeErr(err)
	}
	return m, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
// Returns ErrSerializationFailed if the embedding matrix is ragged.
func MarshalCheckpoint(checkpoint *core.Checkpoint) ([]byte, error) {
	if err := core.MatrixMUS.Validate(checkpoint.Embeddings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf, nil
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, wrapDecodeErr(err)
	}
	return &checkpoint, nil
}

// MarshalSnapshot serializes a Snapshot to bytes.
// Returns ErrSerializationFailed if the embedding matrix is ragged.
func MarshalSnapshot(snapshot *core.Snapshot) ([]byte, error) {
	if err := core.MatrixMUS.Validate(snapshot.Embeddings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	buf := make([]byte, core.SnapshotMUS.Size(*snapshot))
	core.SnapshotMUS.Marshal(*snapshot, buf)
	return buf, nil
}

// UnmarshalSnapshot deserializes a Snapshot from bytes.
func UnmarshalSnapshot(data []byte) (*core.Snapshot, error) {
	snapshot, _, err := core.SnapshotMUS.Unmarshal(data)
	if err != nil {
		return nil, wrapDecodeErr(err)
	}
	return &snapshot, nil
}
