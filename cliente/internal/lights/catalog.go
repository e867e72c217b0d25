package lights

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// LightEntry associa padrões de token de entidade a uma luz.
type LightEntry struct {
	Tokens  []string `json:"tokens"`
	Light   Light    `json:"light"`
	Comment string   `json:"comment,omitempty"`
}

// CatalogConfig é o root do entity_lights.json
type CatalogConfig struct {
	EntityLights []LightEntry `json:"entityLights"`
}

// Catalog responde qual luz uma entidade emite a partir do seu token
// ("KIND:VARIANT:STATE").
type Catalog struct {
	entries []LightEntry

	mu    sync.RWMutex
	cache map[string]*LightEntry
}

// LoadCatalog lê o catálogo de um arquivo JSON.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("falha ao parsear %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog cria um catálogo a partir do conteúdo JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var conf CatalogConfig
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return NewCatalog(conf.EntityLights), nil
}

// NewCatalog cria um catálogo em memória.
func NewCatalog(entries []LightEntry) *Catalog {
	return &Catalog{entries: entries, cache: make(map[string]*LightEntry)}
}

// Lookup retorna a luz do padrão mais específico que casa com o token.
func (c *Catalog) Lookup(token string) (Light, bool) {
	if token == "" {
		return Light{}, false
	}
	c.mu.RLock()
	entry, cached := c.cache[token]
	c.mu.RUnlock()
	if !cached {
		entry = c.bestMatch(token)
		c.mu.Lock()
		c.cache[token] = entry
		c.mu.Unlock()
	}
	if entry == nil {
		return Light{}, false
	}
	return entry.Light, true
}

// Entries retorna todas as entradas carregadas
func (c *Catalog) Entries() []LightEntry {
	return c.entries
}

func (c *Catalog) bestMatch(token string) *LightEntry {
	var best *LightEntry
	bestScore := -1
	for i := range c.entries {
		entry := &c.entries[i]
		for _, pat := range entry.Tokens {
			if !matchToken(pat, token) {
				continue
			}
			if score := specificityScore(pat); score > bestScore {
				bestScore = score
				best = entry
			}
		}
	}
	return best
}

// matchToken compara um token contra um padrão; '*' em qualquer segmento
// aceita qualquer valor e "*" sozinho aceita tudo.
func matchToken(pattern, query string) bool {
	if pattern == "*" {
		return true
	}
	patParts := strings.Split(pattern, ":")
	queryParts := strings.Split(query, ":")
	if len(patParts) != len(queryParts) {
		return false
	}
	for i := range patParts {
		if patParts[i] != "*" && patParts[i] != queryParts[i] {
			return false
		}
	}
	return true
}

// specificityScore conta os segmentos que não são wildcard.
func specificityScore(pattern string) int {
	if pattern == "*" {
		return 0
	}
	score := 0
	for _, p := range strings.Split(pattern, ":") {
		if p != "*" {
			score++
		}
	}
	return score
}
