package web

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"

	"conftrail/archive"
	"conftrail/confdiff"
	"conftrail/database"
)

// Store is the slice of the database client the web layer needs.
type Store interface {
	confdiff.SnapshotSource
	ListDevices(ctx context.Context) ([]database.DeviceRecord, error)
	GetDevice(ctx context.Context, deviceID uuid.UUID) (*database.DeviceRecord, error)
	SnapshotTimestamps(ctx context.Context, deviceID uuid.UUID) ([]archive.Timestamp, error)
	CurrentSnapshot(ctx context.Context, deviceID uuid.UUID) (*database.SnapshotRecord, error)
	ClearConfigurations(ctx context.Context, deviceID uuid.UUID) error
}

// Syncer triggers one importer cycle.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Server handles HTTP requests for the configuration archive.
type Server struct {
	store  Store
	engine *confdiff.Engine
	syncer Syncer
	mux    *http.ServeMux
	addr   string
}

// NewServer creates a new web server instance. syncer may be nil in
// read-only deployments.
func NewServer(store Store, syncer Syncer, addr string) *Server {
	s := &Server{
		store:  store,
		engine: confdiff.NewEngine(store),
		syncer: syncer,
		mux:    http.NewServeMux(),
		addr:   addr,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/devices", s.handleListDevices)
	s.mux.HandleFunc("GET /api/devices/{id}", s.handleGetDevice)
	s.mux.HandleFunc("GET /api/devices/{id}/configurations", s.handleListConfigurations)
	s.mux.HandleFunc("GET /api/devices/{id}/configurations/{timestamp}", s.handleGetConfiguration)
	s.mux.HandleFunc("DELETE /api/devices/{id}/configurations", s.handleClearConfigurations)
	s.mux.HandleFunc("GET /api/devices/{id}/diff", s.handleDiff)
	s.mux.HandleFunc("POST /api/sync", s.handleSync)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}
