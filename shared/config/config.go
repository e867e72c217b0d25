package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do Luminar.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Renderização
	DrawDistance   float32 `json:"draw_distance"` // Raio em blocos
	MesherThreads  int     `json:"mesher_threads"`
	FOV            float32 `json:"fov"`
	LookupCapacity int     `json:"lookup_capacity"` // Slots de entidades na lookup image

	// RenderThreadChecks liga a verificação de thread em toda chamada de GPU.
	RenderThreadChecks bool `json:"render_thread_checks"`

	// Pipeline e recursos
	PipelinePath     string `json:"pipeline_path"`
	ShaderDir        string `json:"shader_dir"`
	WatchPipeline    bool   `json:"watch_pipeline"`
	LightCatalogPath string `json:"light_catalog_path"`
	SettingsPath     string `json:"settings_path"`

	// Inspetor (vazio desativa)
	InspectorAddr string `json:"inspector_addr"`

	// Câmera
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "Luminar",
		Fullscreen:   false,
		TargetFPS:    60,

		DrawDistance:   160,
		MesherThreads:  4,
		FOV:            60.0,
		LookupCapacity: 4096,

		RenderThreadChecks: true,

		PipelinePath:     filepath.Join("assets", "pipeline.yaml"),
		ShaderDir:        filepath.Join("assets", "shaders"),
		WatchPipeline:    true,
		LightCatalogPath: filepath.Join("assets", "entity_lights.json"),
		SettingsPath:     filepath.Join("saves", "settings.db"),

		InspectorAddr: "127.0.0.1:8090",

		CameraSpeed:       10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,

		ShowDebugInfo: true,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações do config.json ao lado do executável.
func Load() *Config {
	return LoadFrom(configPath())
}

// LoadFrom carrega as configurações de um arquivo JSON.
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func LoadFrom(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações ao lado do executável.
func (c *Config) Save() error {
	return c.SaveTo(configPath())
}

// SaveTo salva as configurações em um arquivo JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
