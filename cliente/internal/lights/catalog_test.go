package lights

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchToken(t *testing.T) {
	tests := []struct {
		pattern string
		query   string
		want    bool
	}{
		{"*", "anything", true},
		{"TORCH:*:*", "TORCH:WALL:LIT", true},
		{"MOB:BLAZE:*", "MOB:BLAZE:IDLE", true},
		{"MOB:BLAZE:*", "MOB:CREEPER:IDLE", false},
		{"ITEM:*:*", "ITEM:GLOWSTONE", false},
		{"*:*:BURNING", "MOB:ZOMBIE:BURNING", true},
	}

	for _, tt := range tests {
		got := matchToken(tt.pattern, tt.query)
		if got != tt.want {
			t.Errorf("matchToken(%q, %q) = %v, want %v", tt.pattern, tt.query, got, tt.want)
		}
	}
}

func TestSpecificityScore(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"*", 0},
		{"MOB:*:*", 1},
		{"*:*:BURNING", 1},
		{"MOB:BLAZE:IDLE", 3},
	}

	for _, tt := range tests {
		got := specificityScore(tt.pattern)
		if got != tt.want {
			t.Errorf("specificityScore(%q) = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

const testCatalog = `{
  "entityLights": [
    {"tokens": ["*:*:BURNING"], "light": {"red": 1, "green": 0.5, "blue": 0.1, "intensity": 0.8, "radius": 6}},
    {"tokens": ["MOB:BLAZE:*"], "light": {"red": 1, "green": 0.7, "blue": 0.2, "intensity": 1, "radius": 10}},
    {"tokens": ["ITEM:GLOWSTONE:*", "ITEM:TORCH:*"], "light": {"red": 1, "green": 1, "blue": 0.8, "intensity": 0.6, "radius": 8}}
  ]
}`

func TestCatalogLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entity_lights.json")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	tests := []struct {
		token  string
		radius float32
		ok     bool
	}{
		{"MOB:BLAZE:IDLE", 10, true},
		{"MOB:ZOMBIE:BURNING", 6, true},
		{"ITEM:TORCH:DROPPED", 8, true},
		{"MOB:ZOMBIE:IDLE", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		// Duas consultas para exercitar o cache.
		for range 2 {
			l, ok := c.Lookup(tt.token)
			if ok != tt.ok || l.Radius != tt.radius {
				t.Errorf("Lookup(%q) = %+v, %v; want radius %v, %v", tt.token, l, ok, tt.radius, tt.ok)
			}
		}
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("esperava erro para arquivo inexistente")
	}
	if _, err := ParseCatalog([]byte("{")); err == nil {
		t.Error("esperava erro para JSON inválido")
	}
}

func TestShippedCatalog(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "..", "assets", "entity_lights.json"))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	for _, token := range []string{"ITEM:TORCH:NONE", "MOB:BLAZE:NONE", "ITEM:GLOWSTONE:NONE", "MOB:COW:BURNING"} {
		l, ok := c.Lookup(token)
		if !ok || !l.Emits() {
			t.Errorf("Lookup(%q) = %+v, %v; want emitting light", token, l, ok)
		}
	}
	if _, ok := c.Lookup("MOB:COW:NONE"); ok {
		t.Errorf("Lookup(MOB:COW:NONE) should not match")
	}
}
