package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	goruntime "runtime"
	"syscall"

	"github.com/automatica-core/automatica.core.slave/config"
	"github.com/automatica-core/automatica.core.slave/dispatch"
	"github.com/automatica-core/automatica.core.slave/identity"
	"github.com/automatica-core/automatica.core.slave/lifecycle"
	"github.com/automatica-core/automatica.core.slave/metrics"
	"github.com/automatica-core/automatica.core.slave/runtime"
	"github.com/automatica-core/automatica.core.slave/supervisor"
)

// version is set at build time via ldflags
var version = "dev"

// setupLogging configures logging to write to both stdout and a log file
func setupLogging() (*os.File, error) {
	logDir := "/var/log/automatica-slave"
	logFile := filepath.Join(logDir, "slave.log")

	// Try to create log file, but don't fail if we can't
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("Warning: could not open log file %s: %v (logging to stdout only)", logFile, err)
		return nil, nil
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags)

	return file, nil
}

func main() {
	logFile, _ := setupLogging()
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	cfg, err := config.LoadConfigWithDefaults()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("automatica-slave v%s starting", version)
	log.Printf("Configuration: master=%s, check_interval=%v, data_dir=%s", cfg.Master, cfg.CheckInterval, cfg.DataDir)

	// Unsupported host platforms cannot reach a container runtime; this is
	// the only fatal runtime error.
	transport, err := runtime.ResolveTransport(goruntime.GOOS)
	if err != nil {
		log.Fatalf("Failed to resolve runtime transport: %v", err)
	}

	rt, err := runtime.NewClient(transport)
	if err != nil {
		log.Fatalf("Failed to create runtime client: %v", err)
	}
	defer func() { _ = rt.Close() }()

	slaveID, err := identity.Load(cfg.DataDir, cfg.SlaveID)
	if err != nil {
		log.Fatalf("Failed to resolve slave identity: %v", err)
	}
	log.Printf("Slave identity: %s", slaveID)

	supervisor.ConfigureTrace()

	manager := lifecycle.NewManager(rt, lifecycle.Config{
		Master:      cfg.Master,
		SlaveID:     slaveID,
		SlaveSecret: cfg.SlaveSecret,
		GOOS:        goruntime.GOOS,
	})
	dispatcher := dispatch.New(manager)

	sup := supervisor.New(supervisor.Config{
		Master:        cfg.Master,
		SlaveID:       slaveID,
		SlaveSecret:   cfg.SlaveSecret,
		CheckInterval: cfg.CheckInterval,
	}, manager, rt, dispatcher, nil)

	if cfg.MetricsEnabled {
		metrics.Serve(cfg.MetricsPort)
	}

	sup.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, shutting down gracefully...")
	sup.Stop()
	log.Println("automatica-slave stopped")
}
