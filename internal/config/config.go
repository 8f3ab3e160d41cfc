// Package config is the configuration schema for the core, covering the
// recognized options of spec.md §6 (includeGlobs/excludeGlobs, maxNodes,
// backupsPerFile, undoDepth, resolveTimeoutMs, vectorIndex.mode/rebuild,
// the levenshtein cost guardrails) plus the ambient indexing/search/
// performance sections the teacher's own config already carries.
//
// Grounded on the teacher's internal/config/config.go struct layout and
// internal/config/kdl_config.go KDL loader (github.com/sblinch/kdl-go).
// Config *loading* (the file-discovery/merge-precedence layer) is out of
// scope per spec.md §1 ("configuration file loading" is an external
// collaborator); this package owns the schema, defaults, and the KDL
// deserializer itself, which callers outside the core may invoke.
package config

import "time"

// Config is the full configuration surface for one project root.
type Config struct {
	Version     int
	Project     Project
	Index       Index
	Performance Performance
	Search      Search
	Edit        Edit
	UCG         UCG
	Resolver    Resolver
	VectorIndex VectorIndex
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64
	MaxTotalSizeMB   int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
	GhostRetentionMs int // Open Question 3: ghost symbol tombstone TTL
}

type Performance struct {
	MaxMemoryMB         int
	MaxGoroutines       int
	ParallelFileWorkers int
	IndexingTimeoutSec  int
}

// SearchRanking controls file-type and symbol preference in search
// results, grounded verbatim on the teacher's SearchRanking struct and its
// named defaults (DefaultCodeFileBoost et al. in the teacher's config.go).
type SearchRanking struct {
	Enabled          bool
	CodeFileBoost    float64
	DocFilePenalty   float64
	ConfigFileBoost  float64
	RequireSymbol    bool
	NonSymbolPenalty float64
	ExtensionWeights map[string]float64
}

const (
	DefaultCodeFileBoost    = 50.0
	DefaultDocFilePenalty   = -20.0
	DefaultConfigFileBoost  = 10.0
	DefaultNonSymbolPenalty = -30.0
)

type Search struct {
	MaxResults          int
	SnippetLength       int
	WordBoundary        bool
	SmartCase           bool
	Ranking             SearchRanking
	EnableRecencySignal bool // supplemental git-churn signal, off by default
}

type Edit struct {
	BackupsPerFile            int
	UndoDepth                 int
	ResolveTimeoutMs          int
	LevenshteinMaxFileBytes   int64
	LevenshteinMinTargetOnBig int
}

type UCG struct {
	MaxNodes           int
	CheckpointDebounce time.Duration
}

// Resolver controls the Module Resolver's alias and extension-candidate
// behavior (spec.md §4.3: "exact path; configured alias prefixes;
// extension candidates in a configured order; index.<ext>").
type Resolver struct {
	AliasPrefixes    map[string]string // e.g. "@/" -> "src/"
	ExtensionOrder   []string          // tried in order when a specifier has no extension
	IndexBasenames   []string          // tried, in order, within a resolved directory
}

// VectorIndexMode is one of off/bruteforce/hnsw/auto (spec.md §4.5).
type VectorIndexMode string

const (
	VectorModeOff        VectorIndexMode = "off"
	VectorModeBruteforce VectorIndexMode = "bruteforce"
	VectorModeHNSW       VectorIndexMode = "hnsw"
	VectorModeAuto       VectorIndexMode = "auto"
)

// VectorIndexRebuild is one of manual/on_start/auto.
type VectorIndexRebuild string

const (
	VectorRebuildManual  VectorIndexRebuild = "manual"
	VectorRebuildOnStart VectorIndexRebuild = "on_start"
	VectorRebuildAuto    VectorIndexRebuild = "auto"
)

type VectorIndex struct {
	Mode    VectorIndexMode
	Rebuild VectorIndexRebuild
}

// Default returns a Config populated with the spec.md §6 defaults.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxTotalSizeMB:   500,
			MaxFileCount:     200_000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  100,
			GhostRetentionMs: 5 * 60 * 1000,
		},
		Performance: Performance{
			MaxMemoryMB:        1000,
			MaxGoroutines:      4,
			IndexingTimeoutSec: 120,
		},
		Search: Search{
			MaxResults:    100,
			SnippetLength: 160,
			WordBoundary:  false,
			SmartCase:     true,
			Ranking: SearchRanking{
				Enabled:          true,
				CodeFileBoost:    DefaultCodeFileBoost,
				DocFilePenalty:   DefaultDocFilePenalty,
				ConfigFileBoost:  DefaultConfigFileBoost,
				NonSymbolPenalty: DefaultNonSymbolPenalty,
				ExtensionWeights: map[string]float64{},
			},
		},
		Edit: Edit{
			BackupsPerFile:            10,
			UndoDepth:                 50,
			ResolveTimeoutMs:          1500,
			LevenshteinMaxFileBytes:   100 * 1024,
			LevenshteinMinTargetOnBig: 4,
		},
		UCG: UCG{
			MaxNodes:           5000,
			CheckpointDebounce: 2 * time.Second,
		},
		Resolver: Resolver{
			AliasPrefixes:  map[string]string{},
			ExtensionOrder: []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".go", ".py", ".json"},
			IndexBasenames: []string{"index.ts", "index.tsx", "index.js", "index.jsx", "__init__.py"},
		},
		VectorIndex: VectorIndex{
			Mode:    VectorModeOff,
			Rebuild: VectorRebuildAuto,
		},
		Include: []string{},
		Exclude: []string{
			"node_modules/**", ".git/**", "dist/**", "build/**", ".smart-context/**",
		},
	}
}
