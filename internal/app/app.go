// Package app wires the four CORE subsystems (Incremental Indexer +
// Symbol Store, Search Engine, Edit Engine, Unified Context Graph) plus
// their shared ambient collaborators (File System Port, Module Resolver,
// Symbol Extractor) into one process-wide instance, the way the teacher's
// cmd/lci/main.go builds a single *indexing.MasterIndex and hands it to
// every command and the MCP server.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/depgraph"
	"github.com/standardbeagle/smart-context/internal/edit"
	"github.com/standardbeagle/smart-context/internal/embedprovider"
	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/gitmeta"
	"github.com/standardbeagle/smart-context/internal/indexing"
	"github.com/standardbeagle/smart-context/internal/logging"
	"github.com/standardbeagle/smart-context/internal/parser"
	"github.com/standardbeagle/smart-context/internal/resolver"
	"github.com/standardbeagle/smart-context/internal/search"
	"github.com/standardbeagle/smart-context/internal/store"
	"github.com/standardbeagle/smart-context/internal/symbol"
	"github.com/standardbeagle/smart-context/internal/trigram"
	"github.com/standardbeagle/smart-context/internal/ucg"
	"github.com/standardbeagle/smart-context/internal/vectorindex"
)

var log = logging.Component("app")

// App bundles one project root's live instances of every subsystem.
// Exactly one App exists per running CLI invocation or MCP server,
// mirroring the teacher's single package-level *indexing.MasterIndex.
type App struct {
	Config *config.Config
	FS     fsport.FS

	Store    *store.Store
	Trigram  *trigram.Index
	Resolver *resolver.Resolver
	Parser   parser.Port
	Symbols  *symbol.Extractor
	Deps     *depgraph.Graph
	Indexer  *indexing.Indexer

	Vectors  *vectorindex.Manager
	Embedder embedprovider.Provider
	Recency  search.RecencyProvider // nil unless the repo root is a git repo
	Search   *search.Engine

	Edit *edit.Coordinator
	UCG  *ucg.Graph
}

// New constructs every subsystem for the project rooted at cfg.Project.Root
// using the real OS file system, the same wiring order the teacher's
// NewServer/loadConfigWithOverrides path follows: resolver and extractor
// first (the indexer needs both), then the indexer itself, then the
// signal providers the Search Engine blends, then the Edit Engine and UCG,
// which both depend on the same resolver/extractor/parser instances so a
// file's dependency edges agree across subsystems.
func New(cfg *config.Config) (*App, error) {
	fs := fsport.NewOS()
	root := cfg.Project.Root

	res := resolver.New(fs, root, cfg.Resolver)
	port := parser.NewTreeSitterPort()
	extractor := symbol.NewExtractor(port)
	st := store.New(0)
	tg := trigram.New()
	deps := depgraph.New()

	indexer := indexing.New(fs, root, cfg, extractor, res, st, deps)

	embedder := embedprovider.NewStaticProvider()
	vectors := vectorindex.New(cfg.VectorIndex, embedder.ProviderID(), embedder.ModelID(), embedder.Dims())

	var recency search.RecencyProvider
	if cfg.Search.EnableRecencySignal {
		provider, err := gitmeta.NewProvider(root)
		if err != nil {
			log.Warn("recency signal enabled but repo root is not a git repository", "root", root, "error", err)
		} else {
			recency = provider
		}
	}

	searchEngine := search.New(st, tg, vectors, embedder, fs, recency, cfg.Search)

	editResolver := edit.NewResolver(cfg.Edit)
	editor := edit.NewEditor(fs, filepath.Join(root, ".smart-context", "backups"), cfg.Edit.BackupsPerFile)
	history, err := edit.NewHistory(filepath.Join(root, ".smart-context", "history.json"), cfg.Edit.UndoDepth)
	if err != nil {
		return nil, fmt.Errorf("open edit history: %w", err)
	}
	coordinator := edit.NewCoordinator(fs, editResolver, editor, history)

	graph := ucg.New(fs, root, extractor, res, port, cfg.UCG.MaxNodes,
		filepath.Join(root, ".smart-context", "ucg.json"), cfg.UCG.CheckpointDebounce)
	graph.AttachToIndexer(indexer, fs)

	return &App{
		Config:   cfg,
		FS:       fs,
		Store:    st,
		Trigram:  tg,
		Resolver: res,
		Parser:   port,
		Symbols:  extractor,
		Deps:     deps,
		Indexer:  indexer,
		Vectors:  vectors,
		Embedder: embedder,
		Recency:  recency,
		Search:   searchEngine,
		Edit:     coordinator,
		UCG:      graph,
	}, nil
}

// Scan runs the Incremental Indexer's initial full scan of the project
// root, populating the Symbol Store and Trigram Index before any search or
// edit request can return results.
func (a *App) Scan(ctx context.Context) error {
	return a.Indexer.InitialScan(ctx)
}

// Watch starts the Indexer's fsnotify-backed watch loop, keeping the
// Symbol Store, Trigram Index, and (via AttachToIndexer) the Unified
// Context Graph in sync with on-disk changes for the App's lifetime.
func (a *App) Watch() error {
	if !a.Config.Index.WatchMode {
		return nil
	}
	return a.Indexer.StartWatching()
}

// Close stops watching and flushes any pending UCG checkpoint, the
// counterpart to the teacher's cleanupFuncs shutdown list in cmd/lci.
func (a *App) Close() error {
	a.Indexer.StopWatching()
	return a.UCG.Close()
}
