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

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted artifacts. Timestamps travel as unix
// microseconds; the embedding matrix is encoded densely with a single shared
// row dimension.
var (
	IDMUS           = idSer{}
	TimeMicroMUS    = timeMicroSer{}
	ChunkSummaryMUS = chunkSummarySer{}
	MatrixMUS       = matrixSer{}
	CheckpointMUS   = checkpointSer{}
	SnapshotMUS     = snapshotSer{}

	summariesMUS = ord.NewSliceSer[ChunkSummary](ChunkSummaryMUS)
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type timeMicroSer struct{}

func (timeMicroSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMicroSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMicroSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMicroSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type chunkSummarySer struct{}

func (chunkSummarySer) Marshal(v ChunkSummary, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.ConversationID, bs[n:])
	n += ord.String.Marshal(v.ChunkID, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += varint.Int.Marshal(v.MessageCount, bs[n:])
	n += ord.String.Marshal(v.TextPreview, bs[n:])
	return n
}

func (chunkSummarySer) Unmarshal(bs []byte) (v ChunkSummary, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.ConversationID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ChunkID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.MessageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.TextPreview, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (chunkSummarySer) Size(v ChunkSummary) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.ConversationID)
	size += ord.String.Size(v.ChunkID)
	size += ord.String.Size(v.Title)
	size += varint.Int.Size(v.MessageCount)
	size += ord.String.Size(v.TextPreview)
	return size
}

func (chunkSummarySer) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	return n, nil
}

// matrixSer encodes a dense N x D float32 matrix as row and column counts
// followed by the row-major elements. All rows must share one dimension.
type matrixSer struct{}

func (matrixSer) Marshal(m [][]float32, bs []byte) (n int) {
	rows := len(m)
	dim := 0
	if rows > 0 {
		dim = len(m[0])
	}
	n = varint.Int.Marshal(rows, bs)
	n += varint.Int.Marshal(dim, bs[n:])
	for _, row := range m {
		for _, val := range row {
			n += raw.Float32.Marshal(val, bs[n:])
		}
	}
	return n
}

func (matrixSer) Unmarshal(bs []byte) (m [][]float32, n int, err error) {
	var n1 int
	rows, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	dim, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	if rows < 0 || dim < 0 {
		return nil, n, ErrNegativeDimension
	}

	m = make([][]float32, rows)
	for i := range m {
		row := make([]float32, dim)
		for j := range row {
			row[j], n1, err = raw.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return nil, n, err
			}
		}
		m[i] = row
	}
	return m, n, nil
}

func (matrixSer) Size(m [][]float32) (size int) {
	rows := len(m)
	dim := 0
	if rows > 0 {
		dim = len(m[0])
	}
	size = varint.Int.Size(rows) + varint.Int.Size(dim)
	size += rows * dim * 4 // raw float32 is fixed width
	return size
}

func (matrixSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	rows, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	dim, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	if rows < 0 || dim < 0 {
		return n, ErrNegativeDimension
	}
	for i := 0; i < rows*dim; i++ {
		if n1, err = raw.Float32.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

// Validate reports ErrRaggedMatrix when rows differ in dimension. Matrices
// must be validated before marshalling; the wire format assumes density.
func (matrixSer) Validate(m [][]float32) error {
	if len(m) == 0 {
		return nil
	}
	dim := len(m[0])
	for _, row := range m[1:] {
		if len(row) != dim {
			return ErrRaggedMatrix
		}
	}
	return nil
}

type checkpointSer struct{}

func (checkpointSer) Marshal(v Checkpoint, bs []byte) (n int) {
	n = summariesMUS.Marshal(v.Chunks, bs)
	n += MatrixMUS.Marshal(v.Embeddings, bs[n:])
	n += varint.Int.Marshal(v.ProcessedCount, bs[n:])
	n += TimeMicroMUS.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (checkpointSer) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var n1 int
	if v.Chunks, n, err = summariesMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Embeddings, n1, err = MatrixMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ProcessedCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = TimeMicroMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (checkpointSer) Size(v Checkpoint) (size int) {
	size = summariesMUS.Size(v.Chunks)
	size += MatrixMUS.Size(v.Embeddings)
	size += varint.Int.Size(v.ProcessedCount)
	size += TimeMicroMUS.Size(v.CreatedAt)
	return size
}

func (checkpointSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = summariesMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = MatrixMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = TimeMicroMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	return n, nil
}

type snapshotSer struct{}

func (snapshotSer) Marshal(v Snapshot, bs []byte) (n int) {
	n = summariesMUS.Marshal(v.Chunks, bs)
	n += MatrixMUS.Marshal(v.Embeddings, bs[n:])
	n += varint.Int.Marshal(v.TotalConversations, bs[n:])
	n += varint.Int.Marshal(v.EmbeddingCount, bs[n:])
	n += TimeMicroMUS.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (snapshotSer) Unmarshal(bs []byte) (v Snapshot, n int, err error) {
	var n1 int
	if v.Chunks, n, err = summariesMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Embeddings, n1, err = MatrixMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.TotalConversations, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.EmbeddingCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = TimeMicroMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (snapshotSer) Size(v Snapshot) (size int) {
	size = summariesMUS.Size(v.Chunks)
	size += MatrixMUS.Size(v.Embeddings)
	size += varint.Int.Size(v.TotalConversations)
	size += varint.Int.Size(v.EmbeddingCount)
	size += TimeMicroMUS.Size(v.CreatedAt)
	return size
}

func (snapshotSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = summariesMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = MatrixMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	for i := 0; i < 2; i++ {
		if n1, err = varint.Int.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = TimeMicroMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	return n, nil
}
