// Exclude rule evaluation for the Incremental Indexer's scan/watch walk
// (spec.md §4.1). A project's effective exclude set is the union of three
// sources: Config.Exclude (doublestar globs, matched by internal/indexing
// directly), a .gitignore at the project root, and an optional
// .smart-context-ignore for tool-specific exclusions a team doesn't want to
// mix into version control (generated indexes, editor scratch files,
// agent transcripts). The last two are parsed and matched here.
//
// Grounded on the teacher's internal/config/gitignore.go pattern-matching
// scheme (prefix/suffix/regex fast paths keyed by PatternKind, negation
// applied as last-match-wins) but restructured around two named rule files
// instead of one, since this module treats ignore-file handling as a
// config concern feeding Config.Exclude rather than a standalone parser.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ignoreFileNames are read, in order, from a project root and merged into
// one rule set. Later files' rules are appended after earlier ones, so a
// later negation can un-ignore something an earlier file ignored.
var ignoreFileNames = []string{".gitignore", ".smart-context-ignore"}

// ExcludeRuleSet evaluates a project's .gitignore/.smart-context-ignore
// rules against candidate paths during a scan. It is distinct from
// Config.Exclude: that field holds doublestar globs checked once per walk
// entry by internal/indexing directly, while ExcludeRuleSet reproduces
// gitignore's directory-scoped, negation-aware semantics, which doublestar
// globs alone can't express (a glob can't "un-ignore a file that lives
// inside an otherwise-ignored directory").
type ExcludeRuleSet struct {
	rules []excludeRule

	regexCache sync.Map
}

type excludeRule struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	kind     ruleKind
	compiled *regexp.Regexp
	prefix   string
	suffix   string
}

// ruleKind classifies a rule for fast matching without falling back to
// regexp or filepath.Match on the common cases.
type ruleKind int

const (
	ruleExact ruleKind = iota
	rulePrefix
	ruleSuffix
	ruleWildcard
	ruleRegex
)

// NewExcludeRuleSet returns an empty rule set.
func NewExcludeRuleSet() *ExcludeRuleSet {
	return &ExcludeRuleSet{}
}

// LoadProjectRules reads every recognized ignore file under root that
// exists, merging their rules in ignoreFileNames order. Missing files are
// not an error — a project with no .gitignore and no
// .smart-context-ignore simply relies on Config.Exclude alone.
func (rs *ExcludeRuleSet) LoadProjectRules(root string) error {
	for _, name := range ignoreFileNames {
		if err := rs.loadFile(filepath.Join(root, name)); err != nil {
			return err
		}
	}
	return nil
}

func (rs *ExcludeRuleSet) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		// Ignore file is optional; any open failure (missing, permission)
		// just means this source contributes nothing.
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rs.rules = append(rs.rules, rs.parseRule(line))
	}
	return scanner.Err()
}

// AddRule registers a single rule line directly, for tests and for
// programmatic exclusions (e.g. a generated .smart-context/ artifact
// directory the indexer always wants ignored regardless of project files).
func (rs *ExcludeRuleSet) AddRule(line string) {
	rs.rules = append(rs.rules, rs.parseRule(line))
}

func (rs *ExcludeRuleSet) parseRule(line string) excludeRule {
	rule := excludeRule{}
	line = rs.stripModifiers(&rule, line)
	rule.Pattern = line
	rule.kind, rule.prefix, rule.suffix, rule.compiled = rs.classify(line)
	return rule
}

func (rs *ExcludeRuleSet) stripModifiers(rule *excludeRule, line string) string {
	if strings.HasPrefix(line, "!") {
		rule.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		rule.Absolute = true
		line = line[1:]
	}
	return line
}

// classify picks the cheapest matching strategy for pattern: exact string
// compare, prefix/suffix compare for single-wildcard globs, or a compiled
// regex (cached) for anything more complex.
func (rs *ExcludeRuleSet) classify(pattern string) (ruleKind, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return ruleExact, pattern, pattern, nil
	}
	if kind, prefix, suffix := rs.classifySingleWildcard(pattern); kind != ruleWildcard {
		return kind, prefix, suffix, nil
	}
	return rs.classifyRegex(pattern)
}

func (rs *ExcludeRuleSet) classifySingleWildcard(pattern string) (ruleKind, string, string) {
	if strings.Contains(pattern, "?") || strings.Contains(pattern, "[") {
		return ruleWildcard, "", ""
	}
	if !strings.Contains(pattern, "*") {
		return ruleWildcard, "", ""
	}
	if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
		return ruleSuffix, "", pattern[1:]
	}
	if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
		return rulePrefix, pattern[:len(pattern)-1], ""
	}
	return ruleWildcard, "", ""
}

func (rs *ExcludeRuleSet) classifyRegex(pattern string) (ruleKind, string, string, *regexp.Regexp) {
	expr := toRegex(pattern)
	if cached, ok := rs.regexCache.Load(expr); ok {
		return ruleRegex, "", "", cached.(*regexp.Regexp)
	}
	compiled, err := regexp.Compile(expr)
	if err != nil {
		return ruleWildcard, "", "", nil
	}
	rs.regexCache.Store(expr, compiled)
	return ruleRegex, "", "", compiled
}

func toRegex(pattern string) string {
	expr := regexp.QuoteMeta(pattern)
	expr = strings.ReplaceAll(expr, `\*`, `.*`)
	expr = strings.ReplaceAll(expr, `\?`, `.`)
	expr = strings.ReplaceAll(expr, `\[`, `[`)
	expr = strings.ReplaceAll(expr, `\]`, `]`)
	return "^" + expr + "$"
}

// Matches reports whether path (relative to the project root, slash-
// separated) is excluded under the accumulated rules. Rules are applied
// in file order so a later negation overrides an earlier ignore, matching
// gitignore's last-rule-wins semantics.
func (rs *ExcludeRuleSet) Matches(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	excluded := false
	for _, rule := range rs.rules {
		if rs.ruleMatches(rule, path, isDir) {
			excluded = !rule.Negate
		}
	}
	return excluded
}

func (rs *ExcludeRuleSet) ruleMatches(rule excludeRule, path string, isDir bool) bool {
	if rule.Directory {
		if isDir {
			return rs.matchesDirectory(rule, path)
		}
		return rs.matchesInsideDirectory(rule, path)
	}
	if isDir && strings.HasSuffix(rule.Pattern, "/**") && rs.matchesDirectory(rule, path) {
		return true
	}
	if rule.Absolute {
		return rs.matchesPattern(rule, path)
	}
	if rs.matchesPattern(rule, path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if rs.matchesPattern(rule, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (rs *ExcludeRuleSet) matchesPattern(rule excludeRule, path string) bool {
	switch rule.kind {
	case ruleExact:
		return rule.Pattern == path
	case rulePrefix:
		return strings.HasPrefix(path, rule.prefix)
	case ruleSuffix:
		return strings.HasSuffix(path, rule.suffix)
	case ruleRegex:
		return rule.compiled != nil && rule.compiled.MatchString(path)
	default:
		matched, _ := filepath.Match(rule.Pattern, path)
		return matched
	}
}

func (rs *ExcludeRuleSet) matchesDirectory(rule excludeRule, path string) bool {
	if rs.matchesPattern(rule, path) {
		return true
	}
	if strings.HasSuffix(rule.Pattern, "/**") {
		base := strings.TrimSuffix(rule.Pattern, "/**")
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return false
}

func (rs *ExcludeRuleSet) matchesInsideDirectory(rule excludeRule, path string) bool {
	if strings.HasPrefix(path, rule.Pattern+"/") {
		return true
	}
	return rs.matchesPattern(rule, path)
}

// DoublestarGlobs renders every non-negated rule as a doublestar glob
// equivalent to Config.Exclude's own pattern language, so Load can fold
// ignore-file-derived exclusions into cfg.Exclude and callers (e.g. the
// index_status MCP tool, or a future "why is this file skipped" CLI) see
// one unified list instead of needing to know two exclusion mechanisms
// exist. Negated rules are dropped: a glob can't express "un-ignore",
// so those stay live only in Matches' rule-order evaluation.
func (rs *ExcludeRuleSet) DoublestarGlobs() []string {
	var globs []string
	for _, rule := range rs.rules {
		if rule.Negate {
			continue
		}
		if glob := ruleToGlob(rule); glob != "" {
			globs = append(globs, glob)
		}
	}
	return globs
}

func ruleToGlob(rule excludeRule) string {
	p := rule.Pattern
	if rule.Directory {
		if rule.Absolute {
			return p + "/**"
		}
		return "**/" + p + "/**"
	}
	if rule.Absolute {
		return p
	}
	return "**/" + p
}
