package vectorindex

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// metaPayload is the gob-encoded sidecar persisted alongside (and
// independent of) whatever ANN payload the active backend writes,
// grounded on Aman-CERP-amanmcp's hnswMetadata (internal/store/hnsw.go):
// the thing worth saving is which chunks exist and what the index was
// built against, not the backend's internal representation.
type metaPayload struct {
	ProviderID  string
	ModelID     string
	Dims        int
	Fingerprint uint64
	Chunks      map[string]Chunk
}

// Save persists chunk metadata to metaPath and, when an hnsw backend is
// active, its graph payload to indexPath — both via temp+rename so a
// reader never observes a half-written file, matching the teacher's own
// atomic-write convention for config and the amanmcp grounding source's
// Save/saveMetadata pair.
func (m *Manager) Save(metaPath, indexPath string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meta := metaPayload{
		ProviderID:  m.providerID,
		ModelID:     m.modelID,
		Dims:        m.dims,
		Fingerprint: m.fingerprint,
		Chunks:      m.chunks,
	}
	if err := writeAtomicGob(metaPath, meta); err != nil {
		return fmt.Errorf("save vector index metadata: %w", err)
	}

	if m.hnsw == nil {
		return nil
	}
	if err := saveHNSWGraph(m.hnsw, indexPath); err != nil {
		return fmt.Errorf("save hnsw graph: %w", err)
	}
	return nil
}

// Load restores chunk metadata from metaPath and, when indexPath exists,
// the hnsw graph payload, rebuilding the bruteforce backend from the
// loaded chunks unconditionally (it is cheap and always correct).
func (m *Manager) Load(metaPath, indexPath string) error {
	var meta metaPayload
	if err := readGob(metaPath, &meta); err != nil {
		return fmt.Errorf("load vector index metadata: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerID = meta.ProviderID
	m.modelID = meta.ModelID
	m.dims = meta.Dims
	m.fingerprint = meta.Fingerprint
	m.chunks = meta.Chunks
	if m.chunks == nil {
		m.chunks = make(map[string]Chunk)
	}

	m.bruteforce = newBruteforceBackend()
	for id, c := range m.chunks {
		m.bruteforce.Upsert(id, c.Vector)
	}

	if _, err := os.Stat(indexPath); err == nil {
		hb, loadErr := loadHNSWGraph(indexPath)
		if loadErr != nil {
			return fmt.Errorf("load hnsw graph: %w", loadErr)
		}
		m.hnsw = hb
	} else {
		m.hnsw = nil
	}
	return nil
}

func writeAtomicGob(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

func saveHNSWGraph(h *hnswBackend, path string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := h.graph.Export(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	return writeAtomicGob(path+".ids", hnswIDPayload{IDMap: h.idMap, NextKey: h.nextKey})
}

type hnswIDPayload struct {
	IDMap   map[string]uint64
	NextKey uint64
}

func loadHNSWGraph(path string) (*hnswBackend, error) {
	var ids hnswIDPayload
	if err := readGob(path+".ids", &ids); err != nil {
		return nil, fmt.Errorf("read hnsw id mapping: %w", err)
	}

	h := newHNSWBackend()
	h.idMap = ids.IDMap
	h.nextKey = ids.NextKey
	h.keyMap = make(map[uint64]string, len(ids.IDMap))
	for id, key := range ids.IDMap {
		h.keyMap[key] = id
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := h.graph.Import(bufio.NewReader(f)); err != nil {
		return nil, err
	}
	return h, nil
}
