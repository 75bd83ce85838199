// exporter serves connection counters and states of all instances
// in prometheus text format on /metrics.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	pkgName = "Metrics. "
	cmd     = "METRICS"

	scrapeTimeout = 5 * time.Second
)

// Exporter owns a private registry, so only nwswitch metrics are exposed
type Exporter struct {
	port uint16
	reg  *prometheus.Registry
}

func New(port uint16, collector prometheus.Collector) (*Exporter, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return nil, fmt.Errorf("registering instances collector: %w", err)
	}
	return &Exporter{port: port, reg: reg}, nil
}

func (e *Exporter) Name() string {
	return cmd
}

func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{
		ErrorLog: logger.Error(),
	}))
	return mux
}

// Run serves scrapes in background until ctx is done
func (e *Exporter) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", e.port),
		Handler:           e.Handler(),
		ReadHeaderTimeout: scrapeTimeout,
		WriteTimeout:      scrapeTimeout,
	}
	logger.Info().Println(pkgName, "serving metrics on", srv.Addr)

	go func() {
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Println(pkgName, "metrics server:", err)
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Debug().Println(pkgName, "metrics server stopped")
		srv.Close()
	}()

	return nil
}
