package meshing

import (
	"log"
	"sync"

	"Luminar/shared/util"
)

// RegionMesher distribui pedidos de geometria entre workers. Cada worker pede
// os quads da região ao QuadSource externo e publica o Result em um canal
// consumido pela thread de renderização.
type RegionMesher struct {
	requests    chan Request
	results     chan Result
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	source      QuadSource
	ResultStore *ResultStore
	pending     map[util.RegionCoord]bool
	pendingMu   sync.Mutex
}

// NewRegionMesher cria e inicia um novo mesher.
func NewRegionMesher(workers int, source QuadSource, resultStore *ResultStore) *RegionMesher {
	if workers < 1 {
		workers = 1
	}
	m := &RegionMesher{
		requests:    make(chan Request, 2000),
		results:     make(chan Result, 2000),
		stop:        make(chan struct{}),
		source:      source,
		ResultStore: resultStore,
		pending:     make(map[util.RegionCoord]bool),
	}

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}

	return m
}

// Enqueue agenda a região. Retorna false se já estiver pendente ou se a fila estiver cheia.
func (m *RegionMesher) Enqueue(req Request) bool {
	m.pendingMu.Lock()
	if m.pending[req.Origin] {
		m.pendingMu.Unlock()
		return false
	}
	m.pending[req.Origin] = true
	m.pendingMu.Unlock()

	select {
	case m.requests <- req:
		return true
	default:
		// Fila cheia: remove do pendente para tentar depois
		m.done(req.Origin)
		return false
	}
}

// Pending retorna quantas regiões aguardam processamento.
func (m *RegionMesher) Pending() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return len(m.pending)
}

// Results retorna o canal de resultados prontos.
func (m *RegionMesher) Results() <-chan Result {
	return m.results
}

// Stop encerra os workers e espera que terminem.
func (m *RegionMesher) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
}

func (m *RegionMesher) done(origin util.RegionCoord) {
	m.pendingMu.Lock()
	delete(m.pending, origin)
	m.pendingMu.Unlock()
}

func (m *RegionMesher) worker() {
	defer m.wg.Done()
	for {
		select {
		case req := <-m.requests:
			res, ok := m.process(req)
			m.done(req.Origin)
			if !ok {
				continue
			}
			select {
			case m.results <- res:
			case <-m.stop:
				return
			}
		case <-m.stop:
			return
		}
	}
}

// process gera (ou recupera do cache) a geometria de uma região.
// Um pânico no QuadSource derruba só esse pedido, não o worker.
func (m *RegionMesher) process(req Request) (res Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro no Mesher Worker (%s): %v", req.Origin, r)
			ok = false
		}
	}()

	if m.ResultStore != nil {
		if cached, hit := m.ResultStore.Get(req.Origin, req.MTime); hit {
			return cached, true
		}
	}

	res, err := m.Generate(req)
	if err != nil {
		log.Printf("[Mesher] Falha ao gerar %s: %v", req.Origin, err)
		return Result{}, false
	}

	if m.ResultStore != nil {
		m.ResultStore.Store(res)
	}
	return res, true
}

// Generate transforma os quads de uma região em buffers de vértices.
func (m *RegionMesher) Generate(req Request) (Result, error) {
	buf := GetMeshBuffer()
	defer PutMeshBuffer(buf)

	if err := m.source.EncodeRegion(req.Origin, buf); err != nil {
		return Result{}, err
	}

	return Result{
		Origin:      req.Origin,
		MTime:       req.MTime,
		Solid:       cloneBytes(buf.Solid),
		Translucent: cloneBytes(buf.Translucent),
	}, nil
}
