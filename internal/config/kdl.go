package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// ConfigFileName is the on-disk name of the project config file, written
// and read from the project root, mirroring the teacher's .lci.kdl.
const ConfigFileName = ".smart-context.kdl"

// Load reads and parses the KDL config file at <projectRoot>/.smart-context.kdl,
// then augments the result with exclusions this module can detect on its
// own: .gitignore/.smart-context-ignore rules and language-specific build
// output directories (package.json outDir, Cargo.toml target-dir, etc.).
// If the KDL file does not exist, Load still runs detection on top of
// Default(projectRoot), matching the teacher's LoadKDL "config is optional"
// behavior for the KDL file specifically.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ConfigFileName)
	content, err := os.ReadFile(path)
	var cfg *Config
	switch {
	case os.IsNotExist(err):
		cfg = Default(projectRoot)
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		cfg, err = parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Project.Root = projectRoot
	}

	cfg.Exclude = DeduplicatePatterns(append(cfg.Exclude, detectAutoExcludes(projectRoot)...))
	return cfg, nil
}

// detectAutoExcludes collects the doublestar-glob projection of the
// project's ignore-file rules plus any build output directories the
// BuildArtifactDetector can find from language config files. Both are
// best-effort: a project with neither .gitignore nor a recognized build
// config file contributes nothing here, and Config.Exclude's built-in
// defaults still apply.
func detectAutoExcludes(projectRoot string) []string {
	rules := NewExcludeRuleSet()
	_ = rules.LoadProjectRules(projectRoot)

	var patterns []string
	patterns = append(patterns, rules.DoublestarGlobs()...)
	patterns = append(patterns, NewBuildArtifactDetector(projectRoot).DetectOutputDirectories()...)
	return patterns
}

// parse decodes KDL document text into a Config, starting from the
// defaults and overlaying whatever nodes are present. Unknown nodes are
// ignored rather than rejected, the same permissive posture the teacher's
// parseKDL uses for forward compatibility.
func parse(content string) (*Config, error) {
	doc, err := kdl.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse kdl: %w", err)
	}

	cfg := Default(".")

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			if v := firstStringArg(n, "name"); v != "" {
				cfg.Project.Name = v
			}
		case "index":
			applyIndex(n, &cfg.Index)
		case "performance":
			applyPerformance(n, &cfg.Performance)
		case "search":
			applySearch(n, &cfg.Search)
		case "edit":
			applyEdit(n, &cfg.Edit)
		case "ucg":
			applyUCG(n, &cfg.UCG)
		case "vectorIndex":
			applyVectorIndex(n, &cfg.VectorIndex)
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			if args := collectStringArgs(n); len(args) > 0 {
				cfg.Exclude = args
			}
		}
	}
	return cfg, nil
}

func applyIndex(n *document.Node, idx *Index) {
	if v, ok := firstIntArg(n, "maxFileSize"); ok {
		idx.MaxFileSize = int64(v)
	}
	if v, ok := firstIntArg(n, "maxTotalSizeMB"); ok {
		idx.MaxTotalSizeMB = int64(v)
	}
	if v, ok := firstIntArg(n, "maxFileCount"); ok {
		idx.MaxFileCount = v
	}
	if v, ok := firstBoolArg(n, "followSymlinks"); ok {
		idx.FollowSymlinks = v
	}
	if v, ok := firstBoolArg(n, "respectGitignore"); ok {
		idx.RespectGitignore = v
	}
	if v, ok := firstBoolArg(n, "watchMode"); ok {
		idx.WatchMode = v
	}
	if v, ok := firstIntArg(n, "watchDebounceMs"); ok {
		idx.WatchDebounceMs = v
	}
	if v, ok := firstIntArg(n, "ghostRetentionMs"); ok {
		idx.GhostRetentionMs = v
	}
}

func applyPerformance(n *document.Node, p *Performance) {
	if v, ok := firstIntArg(n, "maxMemoryMB"); ok {
		p.MaxMemoryMB = v
	}
	if v, ok := firstIntArg(n, "maxGoroutines"); ok {
		p.MaxGoroutines = v
	}
	if v, ok := firstIntArg(n, "parallelFileWorkers"); ok {
		p.ParallelFileWorkers = v
	}
	if v, ok := firstIntArg(n, "indexingTimeoutSec"); ok {
		p.IndexingTimeoutSec = v
	}
}

func applySearch(n *document.Node, s *Search) {
	if v, ok := firstIntArg(n, "maxResults"); ok {
		s.MaxResults = v
	}
	if v, ok := firstIntArg(n, "snippetLength"); ok {
		s.SnippetLength = v
	}
	if v, ok := firstBoolArg(n, "wordBoundary"); ok {
		s.WordBoundary = v
	}
	if v, ok := firstBoolArg(n, "smartCase"); ok {
		s.SmartCase = v
	}
	if v, ok := firstBoolArg(n, "enableRecencySignal"); ok {
		s.EnableRecencySignal = v
	}
	for _, child := range n.Nodes() {
		if nodeName(child) == "ranking" {
			applyRanking(child, &s.Ranking)
		}
	}
}

func applyRanking(n *document.Node, r *SearchRanking) {
	if v, ok := firstBoolArg(n, "enabled"); ok {
		r.Enabled = v
	}
	if v, ok := firstFloatArg(n, "codeFileBoost"); ok {
		r.CodeFileBoost = v
	}
	if v, ok := firstFloatArg(n, "docFilePenalty"); ok {
		r.DocFilePenalty = v
	}
	if v, ok := firstFloatArg(n, "configFileBoost"); ok {
		r.ConfigFileBoost = v
	}
	if v, ok := firstBoolArg(n, "requireSymbol"); ok {
		r.RequireSymbol = v
	}
	if v, ok := firstFloatArg(n, "nonSymbolPenalty"); ok {
		r.NonSymbolPenalty = v
	}
}

func applyEdit(n *document.Node, e *Edit) {
	if v, ok := firstIntArg(n, "backupsPerFile"); ok {
		e.BackupsPerFile = v
	}
	if v, ok := firstIntArg(n, "undoDepth"); ok {
		e.UndoDepth = v
	}
	if v, ok := firstIntArg(n, "resolveTimeoutMs"); ok {
		e.ResolveTimeoutMs = v
	}
	if v, ok := firstIntArg(n, "levenshteinMaxFileBytes"); ok {
		e.LevenshteinMaxFileBytes = int64(v)
	}
	if v, ok := firstIntArg(n, "levenshteinMinTargetOnBig"); ok {
		e.LevenshteinMinTargetOnBig = v
	}
}

func applyUCG(n *document.Node, u *UCG) {
	if v, ok := firstIntArg(n, "maxNodes"); ok {
		u.MaxNodes = v
	}
	if v := firstStringArg(n, "checkpointDebounce"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			u.CheckpointDebounce = d
		}
	}
}

func applyVectorIndex(n *document.Node, v *VectorIndex) {
	if s := firstStringArg(n, "mode"); s != "" {
		v.Mode = VectorIndexMode(s)
	}
	if s := firstStringArg(n, "rebuild"); s != "" {
		v.Rebuild = VectorIndexRebuild(s)
	}
}

// --- document-node helpers, adapted from the teacher's kdl_config.go ---

func nodeName(n *document.Node) string {
	if n == nil {
		return ""
	}
	return n.Name.ValueString()
}

func childNode(n *document.Node, name string) *document.Node {
	for _, c := range n.Nodes() {
		if nodeName(c) == name {
			return c
		}
	}
	return nil
}

func firstIntArg(n *document.Node, name string) (int, bool) {
	c := childNode(n, name)
	if c == nil || len(c.Arguments) == 0 {
		return 0, false
	}
	i, err := c.Arguments[0].AsNumber()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

func firstFloatArg(n *document.Node, name string) (float64, bool) {
	c := childNode(n, name)
	if c == nil || len(c.Arguments) == 0 {
		return 0, false
	}
	f, err := c.Arguments[0].AsNumber()
	if err != nil {
		return 0, false
	}
	return f, true
}

func firstBoolArg(n *document.Node, name string) (bool, bool) {
	c := childNode(n, name)
	if c == nil || len(c.Arguments) == 0 {
		return false, false
	}
	b, err := c.Arguments[0].AsBool()
	if err != nil {
		return false, false
	}
	return b, true
}

func firstStringArg(n *document.Node, name string) string {
	c := childNode(n, name)
	if c == nil || len(c.Arguments) == 0 {
		return ""
	}
	return c.Arguments[0].ValueString()
}

func collectStringArgs(n *document.Node) []string {
	var out []string
	for _, a := range n.Arguments {
		out = append(out, a.ValueString())
	}
	return out
}
