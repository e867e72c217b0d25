// Package settings persiste as chaves liga/desliga dos passes do pipeline.
package settings

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ToggleModel é o esquema de uma chave persistida.
type ToggleModel struct {
	Name      string `gorm:"primaryKey"`
	Enabled   bool
	UpdatedAt time.Time
}

// MetadataModel guarda informações do próprio banco.
type MetadataModel struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// Store mantém as chaves em memória e grava cada mudança no SQLite.
// Chaves desconhecidas são consideradas ligadas.
type Store struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[string]bool
}

// Open abre (ou cria) o banco em path e carrega as chaves.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}
	if err := db.AutoMigrate(&ToggleModel{}, &MetadataModel{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}
	db.Save(&MetadataModel{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})

	var rows []ToggleModel
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("falha ao ler chaves: %w", err)
	}
	s := &Store{db: db, cache: make(map[string]bool, len(rows))}
	for _, r := range rows {
		s.cache[r.Name] = r.Enabled
	}

	log.Printf("[Settings] Banco de dados SQLite aberto: %s (%d chaves)", path, len(rows))
	return s, nil
}

// Enabled informa se a chave está ligada.
func (s *Store) Enabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	on, ok := s.cache[name]
	return !ok || on
}

// Set grava o valor de uma chave (upsert).
func (s *Store) Set(name string, enabled bool) error {
	if s.db == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}
	if err := s.db.Save(&ToggleModel{Name: name, Enabled: enabled}).Error; err != nil {
		log.Printf("[Settings] ERRO ao salvar chave %s: %v", name, err)
		return err
	}
	s.mu.Lock()
	s.cache[name] = enabled
	s.mu.Unlock()
	return nil
}

// Toggle inverte a chave e retorna o novo valor.
func (s *Store) Toggle(name string) (bool, error) {
	next := !s.Enabled(name)
	return next, s.Set(name, next)
}

// All retorna as chaves conhecidas ordenadas pelo nome.
func (s *Store) All() []ToggleModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ToggleModel, 0, len(s.cache))
	for name, on := range s.cache {
		out = append(out, ToggleModel{Name: name, Enabled: on})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close fecha a conexão com o banco.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}
