package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/pflag"
)

// main is the entry point for the mandelbrot animation server. It serves
// animated GIFs over plain GET requests and over a websocket endpoint.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var (
		listen     = pflag.String("listen", "", "listen address (overrides config)")
		workers    = pflag.Int("workers", 0, "parallel render workers (overrides config)")
		configPath = pflag.String("config", "", "path to a YAML config file")
	)
	pflag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(cfg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/", renderHandler(cfg))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("mandelbrot server listening on %s", cfg.Listen)
	return srv.ListenAndServe()
}
