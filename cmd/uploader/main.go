package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"groove-press/internal/config"
	"groove-press/internal/uploader"
)

func main() {
	cfg := config.LoadUploaderConfig()

	if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
		log.Fatalf("Failed to create images directory %s: %v", cfg.ImagesDir, err)
	}

	service := uploader.NewService(cfg.ImagesDir, cfg.ProxyHost)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("Starting uploader on %s (images: %s, proxy target: %s)", serverAddr, cfg.ImagesDir, cfg.ProxyHost)
	if err := http.ListenAndServe(serverAddr, service.Router()); err != nil {
		log.Fatalf("Uploader failed to start: %v", err)
	}
}
