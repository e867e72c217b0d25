package render

import "Luminar/cliente/internal/gpu"

// TransferPoolCapacity limita quantos TransferBuffers ociosos ficam guardados.
const TransferPoolCapacity = 4096

const transferInitialSize = 16 * 1024

// TransferBuffer é memória de staging reaproveitável para uploads de vértices.
// Só pode ser usado na thread de renderização.
type TransferBuffer struct {
	data []byte
}

// Write acrescenta bytes ao buffer.
func (b *TransferBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Bytes retorna o conteúdo escrito até agora.
func (b *TransferBuffer) Bytes() []byte {
	return b.data
}

// Len retorna quantos bytes foram escritos.
func (b *TransferBuffer) Len() int {
	return len(b.data)
}

// Reset esvazia o buffer mantendo a capacidade.
func (b *TransferBuffer) Reset() {
	b.data = b.data[:0]
}

// TransferPool recicla TransferBuffers para evitar pressão no GC.
type TransferPool struct {
	thread *gpu.RenderThread
	free   []*TransferBuffer
}

// NewTransferPool cria um pool vazio.
func NewTransferPool(thread *gpu.RenderThread) *TransferPool {
	return &TransferPool{thread: thread}
}

// Claim retorna um buffer vazio, reciclado quando possível.
func (p *TransferPool) Claim() *TransferBuffer {
	p.thread.Assert("TransferPool.Claim")
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return b
	}
	return &TransferBuffer{data: make([]byte, 0, transferInitialSize)}
}

// Release devolve o buffer ao pool. Acima da capacidade o buffer é descartado.
func (p *TransferPool) Release(b *TransferBuffer) {
	p.thread.Assert("TransferPool.Release")
	if b == nil {
		return
	}
	b.Reset()
	if len(p.free) >= TransferPoolCapacity {
		return
	}
	p.free = append(p.free, b)
}

// Idle retorna quantos buffers estão guardados no pool.
func (p *TransferPool) Idle() int {
	return len(p.free)
}
