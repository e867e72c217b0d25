package meshing

import (
	"sync"

	"Luminar/shared/util"
)

// ResultStore guarda os resultados de meshing na RAM para evitar re-processamento.
type ResultStore struct {
	mu      sync.RWMutex
	results map[util.RegionCoord]Result
}

// NewResultStore cria um novo repositório de resultados.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[util.RegionCoord]Result),
	}
}

// Get retorna um resultado se ele existir e for da versão informada.
func (s *ResultStore) Get(coord util.RegionCoord, mtime int64) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.results[coord]
	if ok && res.MTime == mtime {
		// Clone para que o consumidor não altere o cache
		return res.Clone(), true
	}
	return Result{}, false
}

// Store salva um resultado no repositório.
func (s *ResultStore) Store(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.Origin] = res.Clone()
}

// Forget remove a região do cache.
func (s *ResultStore) Forget(coord util.RegionCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, coord)
}

// Clear limpa todo o cache de resultados.
func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[util.RegionCoord]Result)
}
