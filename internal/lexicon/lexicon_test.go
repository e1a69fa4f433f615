package lexicon

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLemma(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"api", "api"},
		{"manage", "manag"},
		{"manages", "manag"},
		{"managed", "manag"},
		{"managing", "manag"},
		{"technologies", "technology"},
		{"processes", "process"},
		{"fixes", "fix"},
		{"planned", "plan"},
		{"installing", "install"},
		{"string", "string"},
		{"strong", "strong"},
		{"analysis", "analysis"},
		{"status", "status"},
		{"node.js", "node.js"},
		{"c++", "c++"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Lemma(tt.word); got != tt.want {
				t.Errorf("Lemma(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestTokenizeTrimsTrailingPunctuation(t *testing.T) {
	tokens := Tokenize("Shipped Node.js services, on Kubernetes. C++ too-")
	var got []string
	for _, tok := range tokens {
		got = append(got, tok.Text)
	}
	want := []string{"Shipped", "Node.js", "services", "on", "Kubernetes", "C++", "too"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultStore(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if store.Version() == "" {
		t.Error("expected a version")
	}

	kubernetes := store.NormalizePhrase("Kubernetes")
	if !store.IsTechnical(kubernetes) {
		t.Errorf("expected %q to be technical", kubernetes)
	}
	if got := store.NormalizePhrase("k8s"); got != kubernetes {
		t.Errorf("synonym k8s normalized to %q, want %q", got, kubernetes)
	}
	if !store.IsSoft(store.NormalizePhrase("Problem Solving")) {
		t.Error("expected problem solving to be a soft skill")
	}
	if category, ok := store.ActionVerbCategory(store.NormalizePhrase("Spearheaded")); !ok || category != "leadership" {
		t.Errorf("ActionVerbCategory(spearheaded) = %q, %v", category, ok)
	}
	if !store.IsFiller(store.NormalizePhrase("Responsible for")) {
		t.Error("expected 'responsible for' to be filler")
	}
	if !store.IsPronoun("my") {
		t.Error("expected 'my' to be a pronoun")
	}
	if len(store.CommonKeywords()) == 0 {
		t.Error("expected common keywords")
	}
}

func TestTermsMergesPhrasesAndKeepsSurface(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	terms := store.Terms("Strong ML background and Machine   Learning with CI/CD")
	byText := map[string][]string{}
	for _, term := range terms {
		byText[term.Text] = append(byText[term.Text], term.Surface)
	}

	ml := store.NormalizePhrase("machine learning")
	if got := byText[ml]; len(got) != 2 || got[0] != "ML" || got[1] != "Machine Learning" {
		t.Errorf("machine learning surfaces = %v", got)
	}
	cicd := store.NormalizePhrase("CI/CD")
	if got := byText[cicd]; len(got) != 1 || got[0] != "CI/CD" {
		t.Errorf("CI/CD surfaces = %v", got)
	}
}

func TestRequirementLevel(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	tests := []struct {
		sentence string
		want     Requirement
	}{
		{"Docker experience is required", RequirementMandatory},
		{"You must know Python", RequirementMandatory},
		{"Kubernetes is a plus", RequirementPreferred},
		{"Nice to have: Redis", RequirementPreferred},
		{"We build dashboards", RequirementNone},
	}

	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			if got := store.RequirementLevel(store.Terms(tt.sentence)); got != tt.want {
				t.Errorf("RequirementLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "version: [unclosed"},
		{"missing version", "technical: [Go]\nactionVerbs:\n  creation: [built]\n"},
		{"missing technical", "version: \"1\"\nactionVerbs:\n  creation: [built]\n"},
		{"bad synonym", "version: \"1\"\ntechnical: [Go]\nactionVerbs:\n  creation: [built]\nsynonyms:\n  - alias: k8s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWatcherReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(path, DefaultDocument(), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Store, 4)
	watcher, err := NewWatcher(path, 20*time.Millisecond, func(s *Store) { reloaded <- s }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	updated := bytes.Replace(DefaultDocument(), []byte(`version: "2025.1"`), []byte(`version: "test.2"`), 1)
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case store := <-reloaded:
		if store.Version() != "test.2" {
			t.Errorf("reloaded version = %q, want test.2", store.Version())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for lexicon reload")
	}
}
