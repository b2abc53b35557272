package retrieval

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// flat index file layout, little-endian:
//
//	uint32 dimension
//	uint32 vector count
//	count*dimension float32 values, row-major
const indexHeaderSize = 8

// FlatIndex is an exhaustive L2 nearest-neighbor index. It is loaded once
// at startup, never mutated afterwards, and safe for concurrent reads.
type FlatIndex struct {
	dim     int
	vectors []float32 // row-major, len = count*dim
	idMap   []string  // internal row -> stable product id
}

// LoadFlatIndex reads a flat index and its id map from disk.
func LoadFlatIndex(indexPath, idMapPath string) (*FlatIndex, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vector index %s", indexPath)
	}
	defer f.Close()

	var header [indexHeaderSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, errors.Wrap(err, "failed to read index header")
	}
	dim := int(binary.LittleEndian.Uint32(header[0:4]))
	count := int(binary.LittleEndian.Uint32(header[4:8]))
	if dim <= 0 {
		return nil, errors.Errorf("invalid index dimension %d", dim)
	}

	vectors := make([]float32, dim*count)
	if err := binary.Read(f, binary.LittleEndian, vectors); err != nil {
		return nil, errors.Wrap(err, "failed to read index vectors")
	}

	idMapData, err := os.ReadFile(idMapPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read id map %s", idMapPath)
	}
	var idMap []string
	if err := json.Unmarshal(idMapData, &idMap); err != nil {
		return nil, errors.Wrap(err, "failed to parse id map")
	}
	if len(idMap) != count {
		return nil, errors.Errorf("id map size %d does not match index size %d", len(idMap), count)
	}

	return &FlatIndex{dim: dim, vectors: vectors, idMap: idMap}, nil
}

// NewFlatIndex builds an index from in-memory vectors. Used in tests and by
// offline index tooling.
func NewFlatIndex(dim int, vectors []float32, idMap []string) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, errors.Errorf("invalid index dimension %d", dim)
	}
	if len(vectors)%dim != 0 {
		return nil, errors.Errorf("vector data length %d is not a multiple of dimension %d", len(vectors), dim)
	}
	if len(vectors)/dim != len(idMap) {
		return nil, errors.Errorf("id map size %d does not match index size %d", len(idMap), len(vectors)/dim)
	}
	return &FlatIndex{dim: dim, vectors: vectors, idMap: idMap}, nil
}

// Size returns the number of indexed vectors.
func (idx *FlatIndex) Size() int {
	return len(idx.idMap)
}

// Dimensions returns the vector dimension.
func (idx *FlatIndex) Dimensions() int {
	return idx.dim
}

// Search returns the k nearest vectors by squared L2 distance, ascending.
// Internal row numbers are translated to stable ids through the id map.
func (idx *FlatIndex) Search(_ context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) != idx.dim {
		return nil, errors.Errorf("query dimension %d does not match index dimension %d", len(vector), idx.dim)
	}
	if k <= 0 {
		return nil, errors.Errorf("invalid k %d", k)
	}

	count := len(idx.idMap)
	matches := make([]Match, 0, count)
	for row := 0; row < count; row++ {
		base := row * idx.dim
		var dist float32
		for i, v := range vector {
			d := idx.vectors[base+i] - v
			dist += d * d
		}
		matches = append(matches, Match{ID: idx.idMap[row], Distance: dist})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}
