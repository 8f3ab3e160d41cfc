package trigram

import "testing"

func TestFindCandidates_CaseInsensitiveByDefault(t *testing.T) {
	ix := New()
	ix.Update("a.go", []byte("func GetUserByID(id int) *User { return nil }"))

	cands := ix.FindCandidates("getuserbyid")
	if len(cands) != 1 || cands[0].Path != "a.go" {
		t.Fatalf("expected a.go to match lowercase query, got %+v", cands)
	}
}

func TestFindCandidates_MatchesCamelCaseSubword(t *testing.T) {
	ix := New()
	ix.Update("user.go", []byte("func getUserById() {}"))

	cands := ix.FindCandidates("user")
	if len(cands) != 1 || cands[0].Path != "user.go" {
		t.Fatalf("expected camelCase subword match for user.go, got %+v", cands)
	}
}

func TestIsCaseSensitive_DetectsUppercase(t *testing.T) {
	if IsCaseSensitive("getuser") {
		t.Fatalf("expected lowercase query to be case-insensitive")
	}
	if !IsCaseSensitive("GetUser") {
		t.Fatalf("expected query with uppercase letter to be case-sensitive")
	}
}

func TestUpdate_ReindexDropsStaleTrigrams(t *testing.T) {
	ix := New()
	ix.Update("a.go", []byte("func uniqueMarkerOne() {}"))
	if got := ix.FindCandidates("uniqueMarkerOne"); len(got) != 1 {
		t.Fatalf("expected initial match, got %+v", got)
	}

	ix.Update("a.go", []byte("func somethingElse() {}"))
	if got := ix.FindCandidates("uniqueMarkerOne"); len(got) != 0 {
		t.Fatalf("expected stale trigrams to be gone after reindex, got %+v", got)
	}
}

func TestRemoveFile_DropsPostings(t *testing.T) {
	ix := New()
	ix.Update("a.go", []byte("func widgetFactory() {}"))
	ix.RemoveFile("a.go")

	if got := ix.FindCandidates("widgetFactory"); len(got) != 0 {
		t.Fatalf("expected no matches after RemoveFile, got %+v", got)
	}
	if ix.Len() != 0 {
		t.Fatalf("expected Len()==0 after removing only file, got %d", ix.Len())
	}
}
