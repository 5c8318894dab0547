// Package metrics exposes operational counters for the slave as Prometheus
// metrics. Collection is always on; the HTTP endpoint is optional.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ContainersStarted counts successful workload starts.
	ContainersStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slave_containers_started_total",
		Help: "Number of workload containers started successfully.",
	})

	// ContainersStopped counts successful workload stops, including stops
	// issued by connection teardown.
	ContainersStopped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slave_containers_stopped_total",
		Help: "Number of workload containers stopped.",
	})

	// CommandErrors counts dropped or failed commands (malformed payloads,
	// duplicate starts, stops for unknown workloads, runtime failures).
	CommandErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slave_command_errors_total",
		Help: "Number of commands dropped or failed.",
	})

	// Reconnects counts teardown-and-reconnect cycles run by the supervisor.
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slave_reconnects_total",
		Help: "Number of channel teardown-and-reconnect cycles.",
	})

	// RunningContainers tracks the registry size.
	RunningContainers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slave_running_containers",
		Help: "Number of workload containers currently registered as running.",
	})
)

// Serve exposes /metrics on the given port in a background goroutine.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Metrics endpoint listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()
}
