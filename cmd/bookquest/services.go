package main

import (
	"log/slog"

	"github.com/enesgrahovac/book-quest/internal/config"
	"github.com/enesgrahovac/book-quest/internal/home"
	"github.com/enesgrahovac/book-quest/internal/server"
)

// loadServices resolves the home directory and config file, then wires the
// service graph. The caller must Close the returned services.
func loadServices(logger *slog.Logger) (*server.Services, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}

	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	cm, err := config.NewManager(path)
	if err != nil {
		return nil, nil, err
	}
	cm.SetLogger(logger)

	svc, err := server.NewServices(server.ServicesConfig{
		Home:          h,
		ConfigManager: cm,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, cm, nil
}
