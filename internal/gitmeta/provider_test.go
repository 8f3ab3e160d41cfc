package gitmeta

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	return root
}

func commitFile(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	cmd := exec.Command("git", "add", name)
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
	cmd = exec.Command("git", "commit", "-q", "-m", "update "+name)
	cmd.Dir = root
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git commit: %v\n%s", err, out)
	}
}

func TestNewProvider_NotGitRepo(t *testing.T) {
	if _, err := NewProvider(t.TempDir()); err == nil {
		t.Fatal("expected error for non-git directory")
	}
}

func TestNewProvider_ResolvesRepoRootFromSubdirectory(t *testing.T) {
	root := initTestRepo(t)
	commitFile(t, root, "a.go", "package a\n")

	sub := filepath.Join(root, "nested", "deeper")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := NewProvider(sub)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if !p.IsGitRepo() {
		t.Fatal("expected resolved root to be a git repo")
	}
}

func TestScore_RecentlyTouchedFileScoresHigherThanUntouched(t *testing.T) {
	root := initTestRepo(t)
	commitFile(t, root, "hot.go", "package a\n")
	commitFile(t, root, "hot.go", "package a\n\nfunc F() {}\n")
	commitFile(t, root, "cold.go", "package a\n")

	p, err := NewProvider(root)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	hot := p.Score("hot.go")
	cold := p.Score("cold.go")
	untouched := p.Score("never-existed.go")

	if hot <= cold {
		t.Fatalf("expected hot.go (%v) to score higher than cold.go (%v)", hot, cold)
	}
	if untouched != 0 {
		t.Fatalf("expected untouched file to score 0, got %v", untouched)
	}
}

func TestScore_CachesUntilTTLExpires(t *testing.T) {
	root := initTestRepo(t)
	commitFile(t, root, "a.go", "package a\n")

	p, err := NewProvider(root)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	p.cacheTTL = 50 * time.Millisecond

	first := p.Score("a.go")
	commitFile(t, root, "b.go", "package a\n")

	// Still within TTL: b.go should not show up yet.
	if got := p.Score("b.go"); got != 0 {
		t.Fatalf("expected cached score for unseen path before refresh, got %v", got)
	}

	time.Sleep(60 * time.Millisecond)
	if got := p.Score("b.go"); got == 0 {
		t.Fatalf("expected refreshed score for b.go after TTL expiry, got %v", got)
	}
	_ = first
}

func TestScoreCommits_FrequentAndRecentBeatsSingleOldChange(t *testing.T) {
	now := time.Now()
	commits := []commit{
		{Timestamp: now, FileChanges: []commitFileChange{{Path: "hot.go", LinesAdded: 1}}},
		{Timestamp: now.Add(-time.Hour), FileChanges: []commitFileChange{{Path: "hot.go", LinesAdded: 1}}},
		{Timestamp: now.Add(-29 * 24 * time.Hour), FileChanges: []commitFileChange{{Path: "cold.go", LinesAdded: 1}}},
	}
	scores := scoreCommits(commits, 30*24*time.Hour)
	if scores["hot.go"] <= scores["cold.go"] {
		t.Fatalf("expected hot.go (%v) > cold.go (%v)", scores["hot.go"], scores["cold.go"])
	}
}

func TestParseRenamePath_HandlesBothNotations(t *testing.T) {
	newP, oldP := parseRenamePath("old.go => new.go")
	if newP != "new.go" || oldP != "old.go" {
		t.Fatalf("flat rename: got new=%q old=%q", newP, oldP)
	}

	newP, oldP = parseRenamePath("pkg/{old => new}/file.go")
	if newP != "pkg/new/file.go" || oldP != "pkg/old/file.go" {
		t.Fatalf("braced rename: got new=%q old=%q", newP, oldP)
	}
}
