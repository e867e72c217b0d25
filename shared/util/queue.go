package util

import "sync"

// UniqueQueue é uma fila FIFO thread-safe que mantém no máximo um item por chave.
// Re-enfileirar uma chave presente apenas substitui o valor, preservando a posição.
type UniqueQueue[K comparable, V any] struct {
	mu    sync.Mutex
	keys  []K
	items map[K]V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{
		keys:  make([]K, 0, 64),
		items: make(map[K]V),
	}
}

// Enqueue adiciona o item. Retorna true se a chave era nova.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, present := q.items[key]
	q.items[key] = value
	if present {
		return false
	}
	q.keys = append(q.keys, key)
	return true
}

// Dequeue remove e retorna o primeiro item da fila.
func (q *UniqueQueue[K, V]) Dequeue() (K, V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.keys) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}

	key := q.keys[0]
	var zeroK K
	q.keys[0] = zeroK
	q.keys = q.keys[1:]
	value := q.items[key]
	delete(q.items, key)
	return key, value, true
}

// Remove retira a chave da fila, se presente.
func (q *UniqueQueue[K, V]) Remove(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.items[key]; !ok {
		return false
	}
	delete(q.items, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len retorna o número de itens na fila.
func (q *UniqueQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}

// Contains verifica se uma chave está na fila.
func (q *UniqueQueue[K, V]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.items[key]
	return ok
}

// Clear esvazia a fila.
func (q *UniqueQueue[K, V]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keys = q.keys[:0]
	q.items = make(map[K]V)
}
