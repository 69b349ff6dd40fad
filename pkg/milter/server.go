package milter

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/d--j/go-milter"
	"github.com/rs/zerolog"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/profiler"
)

// Server is the zbayes milter server
type Server struct {
	config    *config.MilterConfig
	milterSrv *milter.Server
	profiler  *profiler.Profiler
	log       zerolog.Logger
}

// NewServer creates a milter server classifying messages with classifier
func NewServer(cfg *config.MilterConfig, classifier Classifier, log zerolog.Logger) *Server {
	// Only headers and body are needed
	milterOpts := []milter.Option{
		milter.WithProtocol(milter.OptNoConnect | milter.OptNoHelo | milter.OptNoRcptTo | milter.OptNoData),
	}

	if cfg.AddHeaders {
		milterOpts = append(milterOpts, milter.WithAction(milter.OptAddHeader))
	}

	if cfg.ReadTimeoutMs > 0 {
		milterOpts = append(milterOpts, milter.WithReadTimeout(
			time.Duration(cfg.ReadTimeoutMs)*time.Millisecond))
	}
	if cfg.WriteTimeoutMs > 0 {
		milterOpts = append(milterOpts, milter.WithWriteTimeout(
			time.Duration(cfg.WriteTimeoutMs)*time.Millisecond))
	}

	prof := profiler.New()
	milterOpts = append(milterOpts, milter.WithMilter(func() milter.Milter {
		return NewHandler(cfg, classifier, prof, log)
	}))

	return &Server{
		config:    cfg,
		milterSrv: milter.NewServer(milterOpts...),
		profiler:  prof,
		log:       log,
	}
}

// Serve accepts connections on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.milterSrv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(s.config.GracefulShutdownTimeout)*time.Millisecond,
		)
		defer cancel()

		if err := s.milterSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown milter server: %w", err)
		}
		s.log.Info().Uint64("sessions", s.Stats().MilterCount).Msg("milter server stopped")
		s.profiler.Log(s.log)

		return ctx.Err()

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("milter server error: %w", err)
		}
		return nil
	}
}

// Close closes the milter server
func (s *Server) Close() error {
	return s.milterSrv.Close()
}

// Stats returns server statistics
func (s *Server) Stats() ServerStats {
	return ServerStats{
		MilterCount: s.milterSrv.MilterCount(),
		Classify:    s.profiler.GetStats("classify"),
	}
}

// ServerStats contains server statistics
type ServerStats struct {
	MilterCount uint64         // Total number of milter instances created
	Classify    profiler.Stats // Classification latency
}
