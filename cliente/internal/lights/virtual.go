package lights

import (
	"log"
	"slices"
	"sync"

	"Luminar/shared/util"
)

// LightIndex recebe as contribuições de luz virtual das entidades.
type LightIndex interface {
	PlaceVirtualLight(pos util.BlockPos, d Descriptor)
	RemoveVirtualLight(pos util.BlockPos, d Descriptor)
}

// VirtualLightMap conta as contribuições por posição de bloco. Uma mesma
// posição pode receber o mesmo descritor de várias entidades.
type VirtualLightMap struct {
	mu       sync.RWMutex
	cells    map[util.BlockPos]map[Descriptor]int
	onChange func(util.BlockPos)
}

// NewVirtualLightMap cria um mapa vazio. onChange, se não for nil, é chamado
// fora do lock sempre que o conjunto de luzes de uma posição muda.
func NewVirtualLightMap(onChange func(util.BlockPos)) *VirtualLightMap {
	return &VirtualLightMap{cells: make(map[util.BlockPos]map[Descriptor]int), onChange: onChange}
}

func (m *VirtualLightMap) PlaceVirtualLight(pos util.BlockPos, d Descriptor) {
	m.mu.Lock()
	cell := m.cells[pos]
	if cell == nil {
		cell = make(map[Descriptor]int)
		m.cells[pos] = cell
	}
	cell[d]++
	changed := cell[d] == 1
	m.mu.Unlock()

	if changed && m.onChange != nil {
		m.onChange(pos)
	}
}

func (m *VirtualLightMap) RemoveVirtualLight(pos util.BlockPos, d Descriptor) {
	m.mu.Lock()
	cell := m.cells[pos]
	if cell[d] == 0 {
		m.mu.Unlock()
		log.Printf("[Lights] Remoção sem contribuição em %s (descritor %d)", pos, d)
		return
	}
	cell[d]--
	changed := cell[d] == 0
	if changed {
		delete(cell, d)
		if len(cell) == 0 {
			delete(m.cells, pos)
		}
	}
	m.mu.Unlock()

	if changed && m.onChange != nil {
		m.onChange(pos)
	}
}

// LightAt retorna os descritores presentes em pos, em ordem crescente.
func (m *VirtualLightMap) LightAt(pos util.BlockPos) []Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cell := m.cells[pos]
	if len(cell) == 0 {
		return nil
	}
	out := make([]Descriptor, 0, len(cell))
	for d := range cell {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Count retorna quantas contribuições de d existem em pos.
func (m *VirtualLightMap) Count(pos util.BlockPos, d Descriptor) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cells[pos][d]
}

// Len retorna o número de posições iluminadas.
func (m *VirtualLightMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cells)
}
