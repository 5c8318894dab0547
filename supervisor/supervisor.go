// Package supervisor owns the channel connection. It establishes the initial
// MQTT session, subscribes the command topics, and runs a periodic liveness
// check that tears everything down and reconnects when the session is lost.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/automatica-core/automatica.core.slave/dispatch"
	"github.com/automatica-core/automatica.core.slave/lifecycle"
	"github.com/automatica-core/automatica.core.slave/metrics"
)

// channelPort is the fixed MQTT port on the controller.
const channelPort = "1883"

// probeTimeout bounds the runtime liveness probe during (re)connects.
const probeTimeout = 5 * time.Second

// RuntimeProbe is the reachability check run before every connect attempt.
type RuntimeProbe interface {
	Ping(ctx context.Context) error
}

// Config carries the connection parameters for the channel.
type Config struct {
	Master        string        // controller host
	SlaveID       string        // client identity and username
	SlaveSecret   string        // password
	CheckInterval time.Duration // liveness check period
}

// NewClientFunc builds an MQTT client from options. Injectable so tests can
// substitute a fake channel.
type NewClientFunc func(*mqtt.ClientOptions) mqtt.Client

// Supervisor keeps the slave attached to the channel.
type Supervisor struct {
	cfg        Config
	manager    *lifecycle.Manager
	probe      RuntimeProbe
	dispatcher *dispatch.Dispatcher
	newClient  NewClientFunc

	mu      sync.Mutex
	client  mqtt.Client
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// New creates a Supervisor. Pass nil as newClient to use the real paho
// client.
func New(cfg Config, manager *lifecycle.Manager, probe RuntimeProbe, dispatcher *dispatch.Dispatcher, newClient NewClientFunc) *Supervisor {
	if newClient == nil {
		newClient = mqtt.NewClient
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Second
	}
	return &Supervisor{
		cfg:        cfg,
		manager:    manager,
		probe:      probe,
		dispatcher: dispatcher,
		newClient:  newClient,
	}
}

// Start establishes the initial connection and begins the periodic liveness
// checks. A failed initial connection is logged and retried on the next
// tick; Start itself never fails for connectivity reasons.
func (s *Supervisor) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	if err := s.connect(); err != nil {
		log.Printf("Initial connection failed, will retry: %v", err)
	}

	s.wg.Add(1)
	go s.watch()
}

// Stop tears down cleanly: cancels the liveness ticker, stops every
// registered container, and disconnects from the channel.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.teardown()
}

// watch drives the liveness checks until Stop.
func (s *Supervisor) watch() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.check()
		}
	}
}

// check recovers the session when it has been lost: full teardown, then the
// initial-connection path again. Failures are left for the next tick.
func (s *Supervisor) check() {
	s.mu.Lock()
	connected := s.client != nil && s.client.IsConnected()
	s.mu.Unlock()

	if connected {
		return
	}

	log.Println("Channel connection lost, tearing down and reconnecting")
	metrics.Reconnects.Inc()
	s.teardown()

	if err := s.connect(); err != nil {
		log.Printf("Reconnect failed, will retry: %v", err)
	}
}

// connect verifies the runtime is reachable, opens a clean session against
// the controller, and subscribes the command topics.
func (s *Supervisor) connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := s.probe.Ping(ctx); err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker("tcp://" + s.cfg.Master + ":" + channelPort).
		SetClientID(s.cfg.SlaveID).
		SetUsername(s.cfg.SlaveID).
		SetPassword(s.cfg.SlaveSecret).
		SetCleanSession(true).
		SetAutoReconnect(false)

	client := s.newClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to channel at %s: %w", s.cfg.Master, token.Error())
	}

	for topic, handler := range map[string]mqtt.MessageHandler{
		ActionTopic(s.cfg.SlaveID):  s.dispatcher.HandleAction,
		ActionsTopic(s.cfg.SlaveID): s.dispatcher.HandleActionBatch,
	} {
		if token := client.Subscribe(topic, 2, handler); token.Wait() && token.Error() != nil {
			client.Disconnect(0)
			return fmt.Errorf("failed to subscribe %s: %w", topic, token.Error())
		}
	}

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	log.Printf("Connected to channel at %s as %s", s.cfg.Master, s.cfg.SlaveID)
	return nil
}

// teardown stops every registered container, clears the registry, and drops
// the channel connection.
func (s *Supervisor) teardown() {
	s.manager.StopAll(context.Background())

	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
}

// ActionTopic is the single-command topic addressed to one slave.
func ActionTopic(slaveID string) string {
	return "slave/" + slaveID + "/action"
}

// ActionsTopic is the batch variant of ActionTopic.
func ActionsTopic(slaveID string) string {
	return "slave/" + slaveID + "/actions"
}

// ConfigureTrace routes paho's protocol-level tracing into the process log
// when the MQTT_TRACE environment variable is set.
func ConfigureTrace() {
	if os.Getenv("MQTT_TRACE") == "" {
		return
	}
	mqtt.ERROR = log.New(log.Writer(), "[mqtt] ", log.LstdFlags)
	mqtt.CRITICAL = log.New(log.Writer(), "[mqtt] ", log.LstdFlags)
	mqtt.WARN = log.New(log.Writer(), "[mqtt] ", log.LstdFlags)
	mqtt.DEBUG = log.New(log.Writer(), "[mqtt] ", log.LstdFlags)
	log.Println("MQTT protocol tracing enabled")
}
