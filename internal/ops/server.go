// Package ops exposes the resilience layer's operational surface: HTTP
// health and metrics endpoints plus a gRPC health service for platform-side
// probes.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/gatherly/sentinel/internal/infra/worker"
	"github.com/gatherly/sentinel/internal/integrity"
)

// Status is the aggregate health of the client state.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// Report is the detailed health payload.
type Report struct {
	Status             Status     `json:"status"`
	AppVersion         string     `json:"app_version,omitempty"`
	CorruptionCount    int        `json:"corruption_count"`
	ForceCleanArmed    bool       `json:"force_clean_armed"`
	LastSuccessfulLoad *time.Time `json:"last_successful_load,omitempty"`
	Workers            []string   `json:"workers"`
}

// Server provides HTTP and gRPC endpoints for health monitoring.
type Server struct {
	markers    *integrity.Markers
	workers    *worker.Registry
	threshold  int
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcHealth *health.Server
	grpcPort   int
	log        *slog.Logger
}

// NewServer creates a new ops server.
func NewServer(markers *integrity.Markers, workers *worker.Registry, threshold, port, grpcPort int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		markers:   markers,
		workers:   workers,
		threshold: threshold,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		grpcServer: grpc.NewServer(),
		grpcHealth: health.NewServer(),
		grpcPort:   grpcPort,
		log:        slog.Default().With("component", "ops"),
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	healthpb.RegisterHealthServer(s.grpcServer, s.grpcHealth)
	s.grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return s
}

// Start starts the HTTP server and, when a gRPC port is configured, the
// gRPC health service.
func (s *Server) Start() error {
	if s.grpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.grpcPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			if err := s.grpcServer.Serve(lis); err != nil {
				s.log.Error("gRPC health server stopped", "error", err)
			}
		}()
	}
	return s.httpServer.ListenAndServe()
}

// Stop stops both servers.
func (s *Server) Stop(ctx context.Context) error {
	s.grpcServer.GracefulStop()
	return s.httpServer.Shutdown(ctx)
}

// SetHealthy updates the gRPC health status after a detection pass.
func (s *Server) SetHealthy(healthy bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.grpcHealth.SetServingStatus("", status)
}

func (s *Server) buildReport(ctx context.Context) Report {
	report := Report{Status: StatusHealthy, Workers: s.workers.Names()}

	if version, ok, err := s.markers.AppVersion(ctx); err == nil && ok {
		report.AppVersion = version
	}
	if ts, ok, err := s.markers.LastSuccessfulLoad(ctx); err == nil && ok {
		report.LastSuccessfulLoad = &ts
	}
	if armed, err := s.markers.ForceClean(ctx); err == nil {
		report.ForceCleanArmed = armed
	}

	count, err := s.markers.CorruptionCount(ctx)
	if err != nil {
		report.Status = StatusCritical
		return report
	}
	report.CorruptionCount = count

	switch {
	case count >= s.threshold:
		report.Status = StatusCritical
	case count > 0 || report.ForceCleanArmed:
		report.Status = StatusDegraded
	}
	return report
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.buildReport(r.Context())

	response := map[string]string{"status": string(report.Status)}
	w.Header().Set("Content-Type", "application/json")

	if report.Status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.buildReport(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
