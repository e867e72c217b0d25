package render

import (
	"log"
	"sort"
	"sync"

	"Luminar/cliente/internal/gpu"
	"Luminar/cliente/internal/meshing"
	"Luminar/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// purgePerFrame limita quantas regiões são descarregadas por frame (evita stutter).
const purgePerFrame = 8

// RegionStore é o índice espacial das regiões renderizáveis. Uploads e
// descarregamentos acontecem na thread de renderização; consultas de versão
// podem vir de qualquer goroutine.
type RegionStore struct {
	mu      sync.RWMutex
	regions map[util.RegionCoord]*RenderRegion
	// removed guarda o MTime das regiões apagadas por um resultado vazio,
	// para que resultados mais antigos ainda em voo não as ressuscitem.
	removed map[util.RegionCoord]int64

	dev    gpu.Device
	thread *gpu.RenderThread
	pool   *TransferPool
	format gpu.VertexFormat

	purgeQueue *util.UniqueQueue[util.RegionCoord, struct{}]
	visible    []*RenderRegion
}

// NewRegionStore cria um índice vazio.
func NewRegionStore(dev gpu.Device, thread *gpu.RenderThread, pool *TransferPool, format gpu.VertexFormat) *RegionStore {
	return &RegionStore{
		regions:    make(map[util.RegionCoord]*RenderRegion),
		removed:    make(map[util.RegionCoord]int64),
		dev:        dev,
		thread:     thread,
		pool:       pool,
		format:     format,
		purgeQueue: util.NewUniqueQueue[util.RegionCoord, struct{}](),
	}
}

// Version retorna o MTime da região carregada, ou -1.
func (s *RegionStore) Version(coord util.RegionCoord) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.regions[coord]; ok {
		return r.MTime
	}
	return -1
}

// Len retorna o número de regiões carregadas.
func (s *RegionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Region retorna a região carregada na coordenada.
func (s *RegionStore) Region(coord util.RegionCoord) (*RenderRegion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[coord]
	return r, ok
}

// Upload converte um resultado de meshing em geometria na GPU. A geometria
// anterior perde a referência da região; draw lists em voo a mantêm viva.
func (s *RegionStore) Upload(res meshing.Result) {
	s.thread.Assert("RegionStore.Upload")

	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.regions[res.Origin]
	if ok && region.MTime > res.MTime {
		log.Printf("[Regions] Resultado obsoleto descartado para %s (mtime %d < %d)", res.Origin, res.MTime, region.MTime)
		return
	}
	if !ok {
		if mtime, gone := s.removed[res.Origin]; gone && mtime > res.MTime {
			log.Printf("[Regions] Resultado obsoleto descartado para %s removida (mtime %d < %d)", res.Origin, res.MTime, mtime)
			return
		}
		region = NewRenderRegion(res.Origin)
	}
	region.MTime = res.MTime
	region.SetDrawable(PassSolid, s.pack(PassSolid, res.Solid, res.Origin))
	region.SetDrawable(PassTranslucent, s.pack(PassTranslucent, res.Translucent, res.Origin))

	s.purgeQueue.Remove(res.Origin)
	if !region.HasGeometry() {
		region.Close()
		delete(s.regions, res.Origin)
		s.removed[res.Origin] = res.MTime
		return
	}
	delete(s.removed, res.Origin)
	s.regions[res.Origin] = region
}

func (s *RegionStore) pack(cat PassCategory, data []byte, coord util.RegionCoord) *DrawableRegion {
	if len(data) == 0 {
		return EmptyDrawable
	}
	tb := s.pool.Claim()
	defer s.pool.Release(tb)
	tb.Write(data)
	return Pack(s.dev, s.thread, DefaultState(cat), s.format, tb, coord.Origin())
}

// Unload agenda a região para descarregamento incremental.
func (s *RegionStore) Unload(coord util.RegionCoord) {
	s.purgeQueue.Enqueue(coord, struct{}{})
}

// ProcessPurge descarrega até purgePerFrame regiões agendadas.
func (s *RegionStore) ProcessPurge() int {
	s.thread.Assert("RegionStore.ProcessPurge")

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for n < purgePerFrame {
		coord, _, ok := s.purgeQueue.Dequeue()
		if !ok {
			break
		}
		if r, ok := s.regions[coord]; ok {
			r.Close()
			delete(s.regions, coord)
			n++
		}
	}
	return n
}

// PurgeOutside agenda o descarregamento das regiões além do raio e esquece
// as remoções registradas fora dele.
func (s *RegionStore) PurgeOutside(center mgl32.Vec3, radius float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := radius * radius
	for coord := range s.regions {
		if util.DistSq(coord.Center(), center) > limit {
			s.purgeQueue.Enqueue(coord, struct{}{})
		}
	}
	for coord := range s.removed {
		if util.DistSq(coord.Center(), center) > limit {
			delete(s.removed, coord)
		}
	}
}

// Visible retorna as regiões com geometria dentro do raio, ordenadas da mais
// próxima para a mais distante, com Index preenchido. O slice é reutilizado
// entre frames.
func (s *RegionStore) Visible(eye mgl32.Vec3, radius float32) []*RenderRegion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := radius * radius
	s.visible = s.visible[:0]
	for _, r := range s.regions {
		if !r.HasGeometry() {
			continue
		}
		if util.DistSq(r.Coord.Center(), eye) > limit {
			continue
		}
		s.visible = append(s.visible, r)
	}
	sort.Slice(s.visible, func(i, j int) bool {
		di := util.DistSq(s.visible[i].Coord.Center(), eye)
		dj := util.DistSq(s.visible[j].Coord.Center(), eye)
		if di != dj {
			return di < dj
		}
		return s.visible[i].Coord.Pack() < s.visible[j].Coord.Pack()
	})
	for i, r := range s.visible {
		r.Index = i
	}
	return s.visible
}

// Close solta todas as regiões.
func (s *RegionStore) Close() {
	s.thread.Assert("RegionStore.Close")

	s.mu.Lock()
	defer s.mu.Unlock()
	for coord, r := range s.regions {
		r.Close()
		delete(s.regions, coord)
	}
	clear(s.removed)
	s.purgeQueue.Clear()
	s.visible = s.visible[:0]
}
