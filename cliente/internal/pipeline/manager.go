package pipeline

import (
	"log"
	"sync/atomic"

	"Luminar/cliente/internal/gpu"
)

// Manager é dono do pipeline atual e o recarrega do arquivo de definição.
// MarkDirty pode ser chamado de qualquer goroutine; o recarregamento em si
// acontece na thread de renderização.
type Manager struct {
	dev       gpu.Device
	thread    *gpu.RenderThread
	path      string
	resources Resources
	toggles   Toggles

	current       *Pipeline
	width, height int32
	dirty         atomic.Bool
	reloads       atomic.Int64

	// OnReload é chamado após cada troca bem-sucedida de pipeline.
	OnReload func(*Pipeline)
}

// NewManager cria um manager sem pipeline; o primeiro ReloadIfDirty carrega.
func NewManager(dev gpu.Device, thread *gpu.RenderThread, path string, res Resources, toggles Toggles, width, height int32) *Manager {
	m := &Manager{
		dev:       dev,
		thread:    thread,
		path:      path,
		resources: res,
		toggles:   toggles,
		width:     width,
		height:    height,
	}
	m.dirty.Store(true)
	return m
}

// Path retorna o arquivo de definição observado.
func (m *Manager) Path() string { return m.path }

// Current retorna o pipeline ativo, ou nil se nenhum carregou.
func (m *Manager) Current() *Pipeline { return m.current }

// Reloads conta as trocas bem-sucedidas de pipeline.
func (m *Manager) Reloads() int64 { return m.reloads.Load() }

// MarkDirty agenda um recarregamento para o próximo frame.
func (m *Manager) MarkDirty() { m.dirty.Store(true) }

// ReloadIfDirty recarrega se algo marcou o manager desde o último frame.
func (m *Manager) ReloadIfDirty() (bool, error) {
	if !m.dirty.Swap(false) {
		return false, nil
	}
	if err := m.Reload(); err != nil {
		return false, err
	}
	return true, nil
}

// Reload lê a definição e troca o pipeline. Em caso de erro o pipeline
// anterior continua ativo.
func (m *Manager) Reload() error {
	return m.ReloadWith(m.resources)
}

// ReloadWith recarrega resolvendo programas e texturas em res. Só depois de
// um carregamento bem-sucedido res passa a ser o conjunto do manager; em caso
// de erro o pipeline e os recursos anteriores continuam em uso.
func (m *Manager) ReloadWith(res Resources) error {
	m.thread.Assert("Manager.Reload")

	def, err := LoadDefinition(m.path)
	if err != nil {
		log.Printf("[Pipeline] Recarregamento falhou, mantendo pipeline atual: %v", err)
		return err
	}
	next, err := Load(m.dev, m.thread, def, res, m.toggles, m.width, m.height)
	if err != nil {
		log.Printf("[Pipeline] Recarregamento falhou, mantendo pipeline atual: %v", err)
		return err
	}
	if m.current != nil {
		m.current.Close()
	}
	m.current = next
	m.resources = res
	m.reloads.Add(1)
	if m.OnReload != nil {
		m.OnReload(next)
	}
	return nil
}

// Resize repassa o novo tamanho de frame ao pipeline atual.
func (m *Manager) Resize(width, height int32) {
	m.width, m.height = width, height
	if m.current != nil {
		m.current.Resize(width, height)
	}
}

// Execute roda o pipeline atual; sem pipeline não faz nada.
func (m *Manager) Execute(ctx *gpu.StateContext) int {
	if m.current == nil {
		return 0
	}
	return m.current.Execute(ctx)
}

// Close libera o pipeline atual.
func (m *Manager) Close() {
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}
