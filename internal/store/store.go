// Package store is the Symbol Store (spec.md §4.1/§3): a per-file symbol
// record map keyed by canonical path, with a content fast-hash
// short-circuit (P1) so an unchanged file's bytes never reach the parser
// twice, and ghost tombstones for symbols whose file was removed, kept for
// a bounded retention window. Records and ghosts are held in memory only;
// nothing in this package writes them to disk.
//
// Grounded on the teacher's internal/core/file_content_store.go
// (xxhash fast-hash plus sha256 content hash, atomic snapshot-swap
// updates) and internal/indexing/master_index.go's updateSnapshotAtomic
// pattern, generalized from raw file content storage to symbol records.
package store

import (
	"crypto/sha256"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/smart-context/internal/model"
)

// Record is the persisted state for one indexed file.
type Record struct {
	Path        string
	FastHash    uint64
	ContentHash [32]byte
	ParsedAt    time.Time
	Symbols     []model.Symbol
}

// Ghost is a tombstone for a symbol whose file was removed, kept so a
// rename/move can still be attributed to its prior location until the
// retention window elapses.
type Ghost struct {
	Name         string
	LastKnownPath string
	RemovedAt    time.Time
}

// Store holds one Record per indexed path plus ghost tombstones for
// recently removed files. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	files  map[string]*Record
	ghosts map[string]*Ghost // keyed by symbol name

	retention time.Duration
	now       func() time.Time
}

// New constructs an empty Store. retention is the ghost tombstone TTL
// (spec.md §6 GhostRetentionMs, Open Question 3).
func New(retention time.Duration) *Store {
	return &Store{
		files:     make(map[string]*Record),
		ghosts:    make(map[string]*Ghost),
		retention: retention,
		now:       time.Now,
	}
}

// NeedsReparse reports whether content differs from the stored record for
// path, per P1: an unchanged file's fast hash matches and the parser must
// not be invoked. A path with no prior record always needs parsing.
func (s *Store) NeedsReparse(path string, content []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.files[path]
	if !ok {
		return true
	}
	return rec.FastHash != xxhash.Sum64(content)
}

// Put replaces path's record atomically with freshly parsed symbols,
// computing both hashes from content. If path previously carried a ghost
// under a name now redefined here, that name's ghost entry is a no-op to
// clear (ghosts are only cleared by FindGhost's retention sweep, matching "kept for a bounded retention window" rather than
// clearing on reappearance at a different path).
func (s *Store) Put(path string, content []byte, symbols []model.Symbol) {
	rec := &Record{
		Path:        path,
		FastHash:    xxhash.Sum64(content),
		ContentHash: sha256.Sum256(content),
		ParsedAt:    s.now(),
		Symbols:     symbols,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = rec
}

// Remove deletes path's record and registers a ghost tombstone for each of
// its top-level definitions, per spec.md §3: "deleted on file removal and
// registered as a ghost ... for a bounded retention window."
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[path]
	if !ok {
		return
	}
	delete(s.files, path)

	now := s.now()
	for _, sym := range rec.Symbols {
		if sym.Tag != model.TagDefinition || sym.Def == nil {
			continue
		}
		s.ghosts[sym.Def.Name] = &Ghost{
			Name:          sym.Def.Name,
			LastKnownPath: path,
			RemovedAt:     now,
		}
	}
}

// Get returns path's current record, or nil if not indexed.
func (s *Store) Get(path string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[path]
}

// FindGhost returns the ghost tombstone for name if one exists and has not
// yet aged past the retention window; expired ghosts are swept lazily on
// lookup rather than on a timer.
func (s *Store) FindGhost(name string) (Ghost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.ghosts[name]
	if !ok {
		return Ghost{}, false
	}
	if s.now().Sub(g.RemovedAt) > s.retention {
		delete(s.ghosts, name)
		return Ghost{}, false
	}
	return *g, true
}

// FindFilesBySymbolName returns the paths of every indexed file defining a
// symbol with exactly name, used by the Search Engine's symbol-lookup
// candidate source (spec.md §4.6).
func (s *Store) FindFilesBySymbolName(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for path, rec := range s.files {
		for _, sym := range rec.Symbols {
			if sym.Tag == model.TagDefinition && sym.Def != nil && sym.Def.Name == name {
				out = append(out, path)
				break
			}
		}
	}
	return out
}

// FindFilesBySymbolPrefix returns the paths of indexed files defining any
// symbol whose name starts with prefix, used by the Search Engine's symbol
// signal (spec.md §4.6: "exact and prefix matches on canonical names are
// collected first") to extend exact FindFilesBySymbolName matches.
func (s *Store) FindFilesBySymbolPrefix(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for path, rec := range s.files {
		if seen[path] {
			continue
		}
		for _, sym := range rec.Symbols {
			if sym.Tag == model.TagDefinition && sym.Def != nil && strings.HasPrefix(sym.Def.Name, prefix) {
				out = append(out, path)
				seen[path] = true
				break
			}
		}
	}
	return out
}

// All returns every current record, used by Build() callers (the
// Dependency Graph's full rebuild, the Trigram Index's initial scan).
func (s *Store) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.files))
	for _, rec := range s.files {
		out = append(out, rec)
	}
	return out
}

// Len returns the number of currently indexed files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
