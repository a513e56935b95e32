package main

import (
	"fmt"
	"log"
	"os"

	appcfg "github.com/park285/gambito/internal/config"
	"github.com/park285/gambito/internal/engine"
	"github.com/park285/gambito/internal/obslog"
	"github.com/park285/gambito/internal/openingbook"
	"github.com/park285/gambito/internal/uci"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	book := openingbook.Load(cfg.BookPath, logger)
	eng := engine.New(book, logger)
	eng.SetHashSize(cfg.HashMB)
	eng.SetMaxDepth(cfg.MaxSearchDepth)

	session := uci.NewSession(eng, os.Stdin, os.Stdout, logger)
	if err := session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
