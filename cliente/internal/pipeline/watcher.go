package pipeline

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher marca o Manager para recarregar quando o arquivo de definição
// muda. O diretório inteiro é observado porque editores costumam salvar
// renomeando um arquivo temporário.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch começa a observar o arquivo do manager.
func Watch(m *Manager) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("falha ao criar watcher: %w", err)
	}
	target := filepath.Clean(m.Path())
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("falha ao observar %s: %w", target, err)
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	w.wg.Add(1)
	go w.loop(m, target)
	return w, nil
}

func (w *Watcher) loop(m *Manager, target string) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				log.Printf("[Pipeline] %s alterado (%s); recarregando no próximo frame", filepath.Base(target), event.Op)
				m.MarkDirty()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Pipeline] Erro no watcher: %v", err)
		}
	}
}

// Close para de observar. Chamadas repetidas não fazem nada.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
