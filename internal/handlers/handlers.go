package handlers

import (
	"time"

	"vidpress/internal/database"
	"vidpress/internal/jobs"
	"vidpress/internal/media"
	"vidpress/internal/startup"
)

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	manager    *jobs.Manager
	prober     jobs.Prober
	thumbnails *media.Generator
	db         *database.Database
	config     *startup.Config
	startTime  time.Time
}

// New creates a new Handlers instance
func New(manager *jobs.Manager, prober jobs.Prober, thumbnails *media.Generator, db *database.Database, config *startup.Config) *Handlers {
	return &Handlers{
		manager:    manager,
		prober:     prober,
		thumbnails: thumbnails,
		db:         db,
		config:     config,
		startTime:  time.Now(),
	}
}
