package prompts

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no variables", nil},
		{"Hello {{.Name}}, you have {{ .Count }} items", []string{"Count", "Name"}},
		{"{{.Book.Title}} and {{.Book.Title}}", []string{"Book.Title"}},
	}
	for _, tt := range tests {
		if got := ExtractVariables(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractVariables(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	got, err := Render("k", "Chapter {{.Number}}: {{.Title}}", map[string]any{"Number": 3, "Title": "Loops"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Chapter 3: Loops" {
		t.Errorf("Render() = %q", got)
	}

	if _, err := Render("k", "{{.Broken", nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	o, err := s.Get("stages.test.user")
	if err != nil || o != nil {
		t.Fatalf("Get() on missing = %v, %v", o, err)
	}

	if err := s.Save("stages.test.user", "custom"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	o, err = s.Get("stages.test.user")
	if err != nil || o == nil || o.Text != "custom" {
		t.Fatalf("Get() = %+v, %v", o, err)
	}

	if err := s.Delete("stages.test.user"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("stages.test.user"); err != nil {
		t.Errorf("Delete() of missing override error = %v", err)
	}

	for _, bad := range []string{"", "../etc/passwd", "a/b", "1abc"} {
		if err := s.Save(bad, "x"); err == nil {
			t.Errorf("Save(%q) expected invalid key error", bad)
		}
	}
}

func TestResolver(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	r := NewResolver(store, nil)
	r.Register(EmbeddedPrompt{Key: "stages.b.user", Text: "B {{.X}}", Description: "b"})
	r.Register(EmbeddedPrompt{Key: "stages.a.system", Text: "A"})

	resolved, err := r.Resolve("stages.b.user")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.IsOverride || resolved.Text != "B {{.X}}" || resolved.CID != HashText("B {{.X}}") {
		t.Errorf("Resolve() = %+v", resolved)
	}
	if !reflect.DeepEqual(resolved.Variables, []string{"X"}) {
		t.Errorf("Variables = %v", resolved.Variables)
	}

	if err := store.Save("stages.b.user", "override {{.Y}}"); err != nil {
		t.Fatal(err)
	}
	resolved, err = r.Resolve("stages.b.user")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !resolved.IsOverride || !strings.HasPrefix(resolved.Text, "override") {
		t.Errorf("expected override, got %+v", resolved)
	}

	if _, err := r.Resolve("stages.missing"); err == nil {
		t.Error("expected error for unknown key")
	}

	all := r.AllEmbedded()
	if len(all) != 2 || all[0].Key != "stages.a.system" {
		t.Errorf("AllEmbedded() = %+v", all)
	}

	infos := r.List()
	if len(infos) != 2 || infos[0].IsOverride || !infos[1].IsOverride {
		t.Errorf("List() = %+v", infos)
	}

	if p, ok := r.GetEmbedded("stages.a.system"); !ok || p.Hash == "" {
		t.Errorf("GetEmbedded() = %+v, %v", p, ok)
	}
}

func TestResolver_NoStore(t *testing.T) {
	r := NewResolver(nil, nil)
	r.Register(EmbeddedPrompt{Key: "k", Text: "t"})
	resolved, err := r.Resolve("k")
	if err != nil || resolved.IsOverride {
		t.Errorf("Resolve() = %+v, %v", resolved, err)
	}
}
