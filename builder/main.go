package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiGold  = "\033[33m"
	ansiBlue  = "\033[36m"
)

// target é um binário produzido pelo build.
type target struct {
	name   string
	pkg    string
	output string
	cgo    bool // raylib precisa de CGO; o inspetor não
	gui    bool
}

var targets = []target{
	{name: "luminar", pkg: "./cliente", output: "luminar", cgo: true, gui: true},
	{name: "inspector", pkg: "./inspector", output: "luminar-inspector"},
}

func main() {
	only := flag.String("only", "", "Lista separada por vírgulas de alvos (luminar,inspector)")
	outDir := flag.String("out", "bin", "Diretório de saída")
	withTests := flag.Bool("test", false, "Roda go test ./... antes de compilar")
	flag.Parse()

	fmt.Println(ansiBlue + "┌──────────────────────────────────────┐" + ansiReset)
	fmt.Println(ansiBlue + "│  Luminar · build do cliente e tools  │" + ansiReset)
	fmt.Println(ansiBlue + "└──────────────────────────────────────┘" + ansiReset)

	selected, err := selectTargets(*only)
	if err != nil {
		fail(err)
	}

	began := time.Now()
	env := toolchainEnv(os.Environ(), runtime.GOOS)

	if *withTests {
		fmt.Println(ansiGold + "\n» go test ./..." + ansiReset)
		if err := run(env, "test", "./..."); err != nil {
			fail(fmt.Errorf("testes falharam: %w", err))
		}
	}

	for i, t := range selected {
		out := filepath.Join(*outDir, binaryName(t.output, runtime.GOOS))
		fmt.Printf(ansiGold+"\n» [%d/%d] %s (%s)"+ansiReset+"\n", i+1, len(selected), t.name, t.pkg)
		args := []string{"build", "-ldflags", ldflags(t, runtime.GOOS), "-o", out, t.pkg}
		if err := run(withCgo(env, t.cgo), args...); err != nil {
			fail(fmt.Errorf("%s: %w", t.name, err))
		}
		fmt.Printf(ansiGreen+"  ✓ %s"+ansiReset+"\n", out)
	}

	fmt.Printf(ansiBlue+"\nPronto em %v."+ansiReset+"\n", time.Since(began).Round(time.Millisecond))
	fmt.Println(ansiGold + "Rode bin/luminar na raiz do repositório (ele lê assets/)." + ansiReset)
}

// selectTargets filtra os alvos pela flag -only, mantendo a ordem de targets.
func selectTargets(only string) ([]target, error) {
	if strings.TrimSpace(only) == "" {
		return targets, nil
	}
	var names []string
	for _, n := range strings.Split(only, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	var out []target
	for _, t := range targets {
		if slices.Contains(names, t.name) {
			out = append(out, t)
		}
	}
	for _, n := range names {
		if !slices.ContainsFunc(targets, func(t target) bool { return t.name == n }) {
			return nil, fmt.Errorf("alvo desconhecido %q", n)
		}
	}
	return out, nil
}

func binaryName(name, goos string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

func ldflags(t target, goos string) string {
	flags := "-s -w"
	if goos == "windows" && t.cgo {
		flags = "-extldflags=-static " + flags
		if t.gui {
			flags += " -H=windowsgui"
		}
	}
	return flags
}

// toolchainEnv põe o gcc do MSYS2 no PATH no Windows.
func toolchainEnv(base []string, goos string) []string {
	env := slices.Clone(base)
	if goos != "windows" {
		return env
	}
	const mingw = `C:\msys64\mingw64\bin`
	for i, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, "PATH") && !strings.Contains(v, mingw) {
			env[i] = k + "=" + mingw + ";" + v
		}
	}
	return append(env, "CC=gcc")
}

func withCgo(env []string, on bool) []string {
	v := "0"
	if on {
		v = "1"
	}
	return append(slices.Clone(env), "CGO_ENABLED="+v)
}

func run(env []string, args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "\n"+ansiRed+"build abortado: %v"+ansiReset+"\n", err)
	os.Exit(1)
}
