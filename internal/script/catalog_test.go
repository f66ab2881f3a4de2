package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	wantOrder := []string{"intro", "kyc", "platform", "close"}
	stages := c.Stages()
	if len(stages) != len(wantOrder) {
		t.Fatalf("got %d stages, want %d", len(stages), len(wantOrder))
	}
	for i, id := range wantOrder {
		if stages[i].ID != id {
			t.Errorf("stages[%d].ID = %q, want %q", i, stages[i].ID, id)
		}
	}

	if c.First().ID != "intro" {
		t.Errorf("First().ID = %q, want intro", c.First().ID)
	}

	closing, err := c.Stage("close")
	if err != nil {
		t.Fatalf("Stage(close): %v", err)
	}
	if len(closing.Points) != 5 {
		t.Errorf("close has %d points, want 5", len(closing.Points))
	}
	if closing.Title.Get(LocaleVN) != "4. Chốt đơn" {
		t.Errorf("close vn title = %q", closing.Title.Get(LocaleVN))
	}
	if !closing.Points[0].Checklist {
		t.Error("close_1 should be a checklist point")
	}
}

func TestStageNotFound(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	_, err = c.Stage("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Stage(nope) err = %v, want ErrNotFound", err)
	}
	if _, ok := c.Index("nope"); ok {
		t.Error("Index(nope) should report false")
	}
}

func TestPointLookup(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	p, stageID, err := c.Point("kyc_2")
	if err != nil {
		t.Fatalf("Point(kyc_2): %v", err)
	}
	if stageID != "kyc" {
		t.Errorf("stageID = %q, want kyc", stageID)
	}
	if !strings.HasPrefix(p.Text.Get(LocaleEN), "Life pain point") {
		t.Errorf("text = %q", p.Text.Get(LocaleEN))
	}

	if _, _, err := c.Point("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Point(missing) err = %v, want ErrNotFound", err)
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty",
			yaml: "stages: []",
			want: "no stages",
		},
		{
			name: "missing locale",
			yaml: `
stages:
  - id: a
    title: {en: "A"}
    time_limit: "1 min"
`,
			want: `missing "vn"`,
		},
		{
			name: "duplicate stage id",
			yaml: `
stages:
  - id: a
    title: {en: "A", vn: "A"}
  - id: a
    title: {en: "B", vn: "B"}
`,
			want: "already used",
		},
		{
			name: "point id collides with stage id",
			yaml: `
stages:
  - id: a
    title: {en: "A", vn: "A"}
  - id: b
    title: {en: "B", vn: "B"}
    points:
      - id: a
        text: {en: "x", vn: "x"}
`,
			want: "already used",
		},
		{
			name: "incomplete description",
			yaml: `
stages:
  - id: a
    title: {en: "A", vn: "A"}
    description: {vn: "mo ta"}
`,
			want: "description",
		},
		{
			name: "empty point id",
			yaml: `
stages:
  - id: a
    title: {en: "A", vn: "A"}
    points:
      - text: {en: "x", vn: "x"}
`,
			want: "empty id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	doc := `
version: 1
stages:
  - id: open
    title: {en: "Open", vn: "Mở đầu"}
    time_limit: "90s"
  - id: wrap
    title: {en: "Wrap", vn: "Kết thúc"}
    time_limit: "whenever"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.At(1).ID != "wrap" {
		t.Errorf("At(1).ID = %q, want wrap", c.At(1).ID)
	}
	if _, ok := c.At(1).Target(); ok {
		t.Error("wrap should have no target")
	}
}

func TestTextGetFallback(t *testing.T) {
	txt := Text{LocaleEN: "hello"}
	if got := txt.Get(LocaleVN); got != "hello" {
		t.Errorf("Get(vn) = %q, want fallback to en", got)
	}
	if got := (Text{}).Get(LocaleEN); got != "" {
		t.Errorf("empty Get = %q", got)
	}
}

func TestParseLocale(t *testing.T) {
	for in, want := range map[string]Locale{"en": LocaleEN, "VN": LocaleVN, "vi": LocaleVN} {
		got, err := ParseLocale(in)
		if err != nil {
			t.Errorf("ParseLocale(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLocale(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseLocale("fr"); err == nil {
		t.Error("ParseLocale(fr) should fail")
	}
	if LocaleEN.Other() != LocaleVN || LocaleVN.Other() != LocaleEN {
		t.Error("Other should toggle between en and vn")
	}
}
