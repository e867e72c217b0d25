package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"Luminar/cliente/internal/app"
	"Luminar/shared/config"
)

func main() {
	// O contexto OpenGL pertence à thread do SO que criou a janela.
	runtime.LockOSThread()

	configPath := flag.String("config", "", "Arquivo de configuração (padrão: config.json ao lado do executável)")
	pipelinePath := flag.String("pipeline", "", "Definição do pipeline (YAML)")
	inspector := flag.String("inspector", "", "Endereço do inspetor WebSocket (\"off\" desativa)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	f, err := os.OpenFile("luminar_debug.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		defer f.Close()
		log.Println("--- INICIANDO LUMINAR ---")
	}
	log.SetFlags(log.Ltime | log.Lshortfile)

	var cfg *config.Config
	if *configPath != "" {
		cfg = config.LoadFrom(*configPath)
	} else {
		cfg = config.Load()
	}

	// Flags sobrescrevem o config salvo
	if *pipelinePath != "" {
		cfg.PipelinePath = *pipelinePath
	}
	switch *inspector {
	case "":
	case "off":
		cfg.InspectorAddr = ""
	default:
		cfg.InspectorAddr = *inspector
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	application := app.New(cfg)
	if err := application.Run(); err != nil {
		log.Fatalf("[Luminar] %v", err)
	}
}
