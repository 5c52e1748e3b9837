package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docsearch/internal/config"
	"docsearch/internal/engine"
	"docsearch/internal/summarizer"
	"docsearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docsearch/config.yaml if not provided)")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: docsearch [--config=config.yaml] document.docx")
		os.Exit(1)
	}
	docPath := args[0]

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	eng, err := engine.GetOrCreate(ctx, cfg)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}

	count, err := eng.LoadDocument(ctx, docPath)
	if err != nil {
		log.Fatalf("load failed: %v", err)
	}
	log.Printf("indexed %d chunks from %s", count, docPath)

	summary := summarizer.NewFrequency(cfg.Summary.MaxSentences).Summarize(eng.Chunks())

	m := tui.New(eng, summary, cfg.Search.TopK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
