package vector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/debarghya18/localrag/internal/models"
)

// Save persists the store to path so the host can restore it across restarts.
// The directory is created if needed. Format: dimensions (4), document count
// (4), then per document: idLen (4), id bytes, chunk count (4), and per
// chunk: metaLen (4), JSON chunk metadata, vector (dimensions*4 bytes).
func (s *Store) Save(path string) error {
	if path == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(s.dims)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.docs))); err != nil {
		return fmt.Errorf("write document count: %w", err)
	}
	docIDs := make([]string, 0, len(s.docs))
	for id := range s.docs {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)
	for _, docID := range docIDs {
		entries := s.docs[docID]
		if err := writeBytes(w, []byte(docID)); err != nil {
			return fmt.Errorf("write document id: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(entries))); err != nil {
			return fmt.Errorf("write chunk count: %w", err)
		}
		for _, e := range entries {
			meta, err := json.Marshal(e.chunk)
			if err != nil {
				return fmt.Errorf("marshal chunk %s: %w", e.chunk.ID, err)
			}
			if err := writeBytes(w, meta); err != nil {
				return fmt.Errorf("write chunk metadata: %w", err)
			}
			if _, err := w.Write(float32SliceToBytes(e.vector)); err != nil {
				return fmt.Errorf("write vector: %w", err)
			}
		}
	}
	return w.Flush()
}

// Load reads a snapshot from path and replaces the store contents.
// Dimensions must match when the store has already established them. A
// missing file is not an error and leaves the store unchanged.
func (s *Store) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var dims, numDocs uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &numDocs); err != nil {
		return fmt.Errorf("read document count: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dims != 0 && int(dims) != s.dims {
		return fmt.Errorf("dimension mismatch: snapshot has %d, store expects %d", dims, s.dims)
	}
	docs := make(map[string][]*storedEntry, numDocs)
	var order int64
	buf := make([]byte, dims*4)
	for i := uint32(0); i < numDocs; i++ {
		docIDBytes, err := readBytes(r)
		if err != nil {
			return fmt.Errorf("read document id: %w", err)
		}
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return fmt.Errorf("read chunk count: %w", err)
		}
		entries := make([]*storedEntry, 0, count)
		for j := uint32(0); j < count; j++ {
			meta, err := readBytes(r)
			if err != nil {
				return fmt.Errorf("read chunk metadata: %w", err)
			}
			var chunk models.Chunk
			if err := json.Unmarshal(meta, &chunk); err != nil {
				return fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
			if _, err := io.ReadFull(r, buf); err != nil {
				return fmt.Errorf("read vector: %w", err)
			}
			entries = append(entries, &storedEntry{
				chunk:  &chunk,
				order:  order,
				vector: bytesToFloat32Slice(buf),
			})
			order++
		}
		docs[string(docIDBytes)] = entries
	}
	s.dims = int(dims)
	s.docs = docs
	s.nextOrder = order
	for docID := range docs {
		s.versions[docID]++
	}
	s.globalVersion++
	return nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
