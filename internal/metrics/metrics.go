package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// decoding
	EnvelopesDecoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forward_collab_envelopes_decoded_total",
			Help: "Total envelopes decoded into item tables",
		},
	)

	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forward_collab_decode_failures_total",
			Help: "Total failed decodes or resolutions",
		},
		[]string{"kind"},
	)

	DecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forward_collab_decode_duration_seconds",
			Help:    "Duration of envelope decode plus tree resolution",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	ForwardDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forward_collab_forward_depth",
			Help:    "Nesting depth of resolved forwards",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 16, 32},
		},
	)

	// downstream
	Downloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forward_collab_downloads_total",
			Help: "Total envelope downloads",
		},
		[]string{"status"}, // "ok" or "error"
	)

	ForwardsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forward_collab_forwards_archived_total",
			Help: "Total forwards written to the archive",
		},
	)

	ForwardsPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forward_collab_forwards_posted_total",
			Help: "Total forwards posted to matrix",
		},
	)
)

type Server struct {
	server *http.Server
	wg     sync.WaitGroup
}

// Serve exposes the default registry on listen, nothing happens when
// listen is empty.
func (s *Server) Serve(listen string) {
	if listen == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s.server = &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Infof("Serving metrics on %v", listen)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server failed: %v", err)
		}
	}()
}

func (s *Server) Stop(waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Errorf("Failed to stop metrics server: %v", err)
	}
	s.wg.Wait()
}
