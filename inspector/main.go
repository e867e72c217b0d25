package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"Luminar/shared/inspect"
)

// toggleFlag acumula "-toggle nome=on|off" repetidos.
type toggleFlag []inspect.ToggleCommand

func (t *toggleFlag) String() string { return fmt.Sprint(*t) }

func (t *toggleFlag) Set(v string) error {
	name, state, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("esperado nome=on|off, recebido %q", v)
	}
	switch strings.ToLower(state) {
	case "on", "true", "1":
		*t = append(*t, inspect.ToggleCommand{Name: name, Enabled: true})
	case "off", "false", "0":
		*t = append(*t, inspect.ToggleCommand{Name: name, Enabled: false})
	default:
		return fmt.Errorf("estado inválido %q para %s", state, name)
	}
	return nil
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "Endereço do inspetor do Luminar")
	count := flag.Int("n", 0, "Sai após n amostras (0 = contínuo)")
	every := flag.Int("every", 60, "Imprime uma a cada N amostras")
	var toggles toggleFlag
	flag.Var(&toggles, "toggle", "Liga/desliga um passe: nome=on|off (pode repetir)")
	flag.Parse()

	log.SetFlags(log.Ltime)
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        Luminar Inspector             ║")
	fmt.Println("╚══════════════════════════════════════╝")

	client := inspect.NewClient("ws://" + *addr + "/ws")
	received := make(chan inspect.FrameStats, 16)
	client.OnStats = func(s inspect.FrameStats) {
		select {
		case received <- s:
		default:
		}
	}
	if err := client.Connect(10, 2*time.Second); err != nil {
		log.Fatalf("[Inspector] %v", err)
	}
	defer client.Close()
	log.Printf("[Inspector] Conectado a %s", *addr)

	for _, cmd := range toggles {
		if err := client.SendToggle(cmd.Name, cmd.Enabled); err != nil {
			log.Fatalf("[Inspector] Falha ao enviar %s: %v", cmd.Name, err)
		}
		log.Printf("[Inspector] Passe %s -> %v", cmd.Name, cmd.Enabled)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	seen := 0
	for {
		select {
		case s := <-received:
			seen++
			if *every <= 1 || seen%*every == 1 {
				printStats(s)
			}
			if *count > 0 && seen >= *count {
				return
			}
		case <-client.Done():
			log.Println("[Inspector] Conexão encerrada pelo Luminar")
			return
		case <-interrupt:
			return
		}
	}
}

func printStats(s inspect.FrameStats) {
	log.Printf("frame %d | %.2f ms | regiões %d | draws %d+%d | passes %d | entidades %d | luzes %d | malhas %d | reloads %d",
		s.Frame, float64(s.FrameMicros)/1000, s.Regions, s.SolidDraws, s.TranslucentDraws,
		s.Passes, s.TrackedEntities, s.LightDescriptors, s.PendingMeshes, s.PipelineReloads)
}
