package lights

import (
	"log"
	"sync"

	"Luminar/cliente/internal/gpuimage"
	"Luminar/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Entity é o que o rastreador precisa saber de uma entidade do mundo.
type Entity interface {
	ID() int64
	Position() mgl32.Vec3
	LightToken() string
	Removed() bool
}

// EntitySource enumera as entidades renderizáveis do mundo.
type EntitySource interface {
	ForEachRenderable(fn func(Entity))
}

// Resolver traduz o token de uma entidade na luz que ela emite.
type Resolver interface {
	Lookup(token string) (Light, bool)
}

type trackedEntity struct {
	entity Entity
	pos    util.BlockPos
	desc   Descriptor
	slot   int
}

// Tracker compara, a cada frame, posição e descritor de luz das entidades
// rastreadas com os últimos valores conhecidos e mantém o LightIndex e a
// lookup image (slot da entidade -> descritor) em dia.
type Tracker struct {
	source   EntitySource
	resolver Resolver
	registry *Registry
	index    LightIndex
	lookup   *gpuimage.LookupImage

	mu           sync.Mutex
	tracked      map[int64]*trackedEntity
	needsRebuild bool
}

// NewTracker cria um rastreador vazio; o primeiro Update varre o source.
func NewTracker(source EntitySource, resolver Resolver, registry *Registry, index LightIndex, lookup *gpuimage.LookupImage) *Tracker {
	return &Tracker{
		source:       source,
		resolver:     resolver,
		registry:     registry,
		index:        index,
		lookup:       lookup,
		tracked:      make(map[int64]*trackedEntity),
		needsRebuild: true,
	}
}

// Update reconstrói o rastreamento se houve Reset, descarta entidades
// removidas e aplica as mudanças de luz das demais.
func (t *Tracker) Update() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.needsRebuild {
		t.needsRebuild = false
		t.source.ForEachRenderable(t.track)
		log.Printf("[Lights] Rastreamento reconstruído: %d entidades", len(t.tracked))
	}

	for id, te := range t.tracked {
		if te.entity.Removed() {
			t.untrack(id, te)
			continue
		}
		t.refresh(te)
	}
}

// Track passa a rastrear e. Chamadas repetidas para o mesmo ID não fazem nada.
func (t *Tracker) Track(e Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.track(e)
}

// Untrack para de rastrear a entidade e remove sua contribuição.
func (t *Tracker) Untrack(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if te, ok := t.tracked[id]; ok {
		t.untrack(id, te)
	}
}

// Reset remove todas as contribuições; o próximo Update reconstrói tudo.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, te := range t.tracked {
		t.untrack(id, te)
	}
	t.needsRebuild = true
}

// Tracked retorna quantas entidades estão sendo rastreadas.
func (t *Tracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracked)
}

// Slot retorna o slot da lookup image da entidade.
func (t *Tracker) Slot(id int64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	te, ok := t.tracked[id]
	if !ok {
		return 0, false
	}
	return te.slot, true
}

func (t *Tracker) descriptorFor(e Entity) Descriptor {
	l, ok := t.resolver.Lookup(e.LightToken())
	if !ok {
		return NoLight
	}
	return t.registry.Descriptor(l)
}

func (t *Tracker) track(e Entity) {
	if e.Removed() {
		return
	}
	if _, ok := t.tracked[e.ID()]; ok {
		return
	}
	te := &trackedEntity{
		entity: e,
		pos:    util.BlockPosOf(e.Position()),
		desc:   t.descriptorFor(e),
	}
	te.slot = t.lookup.CreateIndexForValue(int32(te.desc))
	if te.desc != NoLight {
		t.index.PlaceVirtualLight(te.pos, te.desc)
	}
	t.tracked[e.ID()] = te
}

func (t *Tracker) untrack(id int64, te *trackedEntity) {
	if te.desc != NoLight {
		t.index.RemoveVirtualLight(te.pos, te.desc)
	}
	t.lookup.ReleaseIndex(te.slot)
	delete(t.tracked, id)
}

func (t *Tracker) refresh(te *trackedEntity) {
	pos := util.BlockPosOf(te.entity.Position())
	desc := t.descriptorFor(te.entity)

	if desc == te.desc && (desc == NoLight || pos == te.pos) {
		te.pos = pos
		return
	}
	if te.desc != NoLight {
		t.index.RemoveVirtualLight(te.pos, te.desc)
	}
	if desc != NoLight {
		t.index.PlaceVirtualLight(pos, desc)
	}
	if desc != te.desc {
		t.lookup.ChangeValueForIndex(te.slot, int32(desc))
	}
	te.pos, te.desc = pos, desc
}
