package search

import (
	"context"
	"testing"

	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/fsport"
	"github.com/standardbeagle/smart-context/internal/model"
	"github.com/standardbeagle/smart-context/internal/store"
	"github.com/standardbeagle/smart-context/internal/trigram"
)

func newTestEngine(t *testing.T) (*Engine, *fsport.MemFS) {
	t.Helper()
	st := store.New(0)
	tg := trigram.New()
	fs := fsport.NewMem()

	files := map[string]string{
		"auth/login.go":   "func Login(user string) error { return nil }",
		"auth/logout.go":  "func Logout(user string) error { return nil }",
		"widgets/panel.go": "func RenderPanel() {}",
	}
	for path, content := range files {
		if err := fs.WriteFile(path, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		tg.Update(path, []byte(content))
	}
	st.Put("auth/login.go", []byte(files["auth/login.go"]), []model.Symbol{
		model.DefSymbol(model.Definition{Kind: model.KindFunction, Name: "Login", Doc: "authenticates a user and returns an error on failure"}),
	})
	st.Put("auth/logout.go", []byte(files["auth/logout.go"]), []model.Symbol{
		model.DefSymbol(model.Definition{Kind: model.KindFunction, Name: "Logout"}),
	})
	st.Put("widgets/panel.go", []byte(files["widgets/panel.go"]), []model.Symbol{
		model.DefSymbol(model.Definition{Kind: model.KindFunction, Name: "RenderPanel"}),
	})

	ranking := config.Search{MaxResults: 10, SnippetLength: 80}
	return New(st, tg, nil, nil, fs, nil, ranking), fs
}

func TestSearch_SymbolExactMatchRanksFirst(t *testing.T) {
	e, _ := newTestEngine(t)
	result := e.Search(context.Background(), "Login", Options{})
	if len(result.Matches) == 0 {
		t.Fatalf("expected matches for symbol query")
	}
	if result.Matches[0].FilePath != "auth/login.go" {
		t.Fatalf("expected auth/login.go first, got %+v", result.Matches[0])
	}
}

func TestSearch_FilenameIntentRanksExactBasename(t *testing.T) {
	e, _ := newTestEngine(t)
	result := e.Search(context.Background(), "panel.go", Options{})
	if len(result.Matches) == 0 || result.Matches[0].FilePath != "widgets/panel.go" {
		t.Fatalf("expected widgets/panel.go first for filename query, got %+v", result.Matches)
	}
	if result.Intent != IntentFile {
		t.Fatalf("expected file intent, got %s", result.Intent)
	}
}

func TestSearch_NoVectorManagerDegradesForCodeIntent(t *testing.T) {
	e, _ := newTestEngine(t)
	result := e.Search(context.Background(), "how does login handle sessions", Options{})
	if !result.Degraded {
		t.Fatalf("expected degraded result when no vector manager is configured for a code-intent query")
	}
}

func TestSearch_MaxResultsTruncates(t *testing.T) {
	e, _ := newTestEngine(t)
	result := e.Search(context.Background(), "func", Options{MaxResults: 1})
	if len(result.Matches) > 1 {
		t.Fatalf("expected at most 1 match, got %d", len(result.Matches))
	}
}

func TestClassifyIntent_FileLikeTokenWins(t *testing.T) {
	if got := ClassifyIntent("open panel.go"); got != IntentFile {
		t.Fatalf("expected file intent, got %s", got)
	}
}

func TestClassifyIntent_BugVerbWins(t *testing.T) {
	if got := ClassifyIntent("why does login fail silently"); got != IntentBug {
		t.Fatalf("expected bug intent, got %s", got)
	}
}

func TestClassifyIntent_CamelCaseIsSymbol(t *testing.T) {
	if got := ClassifyIntent("RenderPanel"); got != IntentSymbol {
		t.Fatalf("expected symbol intent, got %s", got)
	}
}
