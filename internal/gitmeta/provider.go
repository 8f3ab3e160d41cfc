// Package gitmeta implements search.RecencyProvider: a [0,1] score per path
// derived from how recently and how often it has changed in git history.
//
// Grounded on the teacher's internal/git package — NewProvider's
// `git rev-parse --show-toplevel` root-discovery (provider.go) and
// HistoryProvider.GetCommitHistory's `git log --numstat` shellout
// (frequency_provider.go) — scaled down from that package's full
// hotspot/collision/ownership FrequencyAnalyzer to the single ranking
// signal spec.md's Search Engine needs. See DESIGN.md for what was
// deliberately left out.
package gitmeta

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Provider answers Score(path) for the search engine's optional recency
// signal. One Provider is built per repo root and reused; it caches the
// computed scores for cacheTTL so repeated searches don't re-shell out to
// git on every call.
type Provider struct {
	repoRoot string
	window   time.Duration
	cacheTTL time.Duration

	mu       sync.Mutex
	scores   map[string]float64
	loadedAt time.Time
}

// DefaultWindow matches the teacher's Window30Days default
// (frequency_types.go's TimeWindowToDuration fallback).
const DefaultWindow = 30 * 24 * time.Hour

// DefaultCacheTTL matches the teacher's FrequencyCache default TTL
// (frequency_cache.go's NewFrequencyCache fallback).
const DefaultCacheTTL = 10 * time.Minute

// NewProvider resolves repoRoot's actual git top-level directory (so a
// Provider built from any subdirectory still scores paths relative to the
// repo root) and returns an error if repoRoot is not inside a git
// repository, exactly mirroring the teacher's NewProvider.
func NewProvider(repoRoot string) (*Provider, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid repo root: %w", err)
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", absRoot)
	}

	return &Provider{
		repoRoot: strings.TrimSpace(string(output)),
		window:   DefaultWindow,
		cacheTTL: DefaultCacheTTL,
		scores:   make(map[string]float64),
	}, nil
}

// IsGitRepo reports whether repoRoot has a .git directory, same check as
// the teacher's Provider.IsGitRepo.
func (p *Provider) IsGitRepo() bool {
	info, err := os.Stat(filepath.Join(p.repoRoot, ".git"))
	return err == nil && info.IsDir()
}

// Score implements search.RecencyProvider. path is a canonical
// (repo-root-relative) path. Any git failure (not a repo, git not on
// PATH, empty history) yields 0 rather than an error — a missing signal
// degrades ranking to baseline, it must never fail a search.
func (p *Provider) Score(path string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.loadedAt) > p.cacheTTL {
		p.refreshLocked()
	}
	return p.scores[filepath.ToSlash(path)]
}

// refreshLocked recomputes every scored path's score from one git log
// invocation. Callers must hold p.mu.
func (p *Provider) refreshLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commits, err := p.commitHistory(ctx)
	p.loadedAt = time.Now()
	if err != nil {
		return
	}
	p.scores = scoreCommits(commits, p.window)
}
