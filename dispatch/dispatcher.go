// Package dispatch decodes inbound channel messages into typed action
// requests and routes them to the lifecycle manager.
package dispatch

import (
	"context"
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/automatica-core/automatica.core.slave/lifecycle"
	"github.com/automatica-core/automatica.core.slave/metrics"
)

// Action names a workload lifecycle operation.
type Action string

const (
	ActionStart Action = "Start"
	ActionStop  Action = "Stop"
)

// ActionRequest is the wire format of a controller command. Field names are
// fixed by the controller and match the JSON payload exactly.
type ActionRequest struct {
	Id          string `json:"Id"`
	ImageName   string `json:"ImageName"`
	Tag         string `json:"Tag"`
	ImageSource string `json:"ImageSource,omitempty"`
	Action      Action `json:"Action"`
}

// Lifecycle is the manager surface the dispatcher routes into.
type Lifecycle interface {
	Start(ctx context.Context, req lifecycle.Request) error
	Stop(ctx context.Context, req lifecycle.Request) error
}

// Dispatcher routes decoded requests to the lifecycle manager.
type Dispatcher struct {
	lc Lifecycle
}

// New creates a Dispatcher.
func New(lc Lifecycle) *Dispatcher {
	return &Dispatcher{lc: lc}
}

// HandleAction is the message handler for the single-command topic.
// Malformed payloads are dropped with a logged error.
func (d *Dispatcher) HandleAction(_ mqtt.Client, msg mqtt.Message) {
	var req ActionRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		log.Printf("Error decoding action on %s: %v", msg.Topic(), err)
		metrics.CommandErrors.Inc()
		return
	}
	d.Dispatch(req)
}

// HandleActionBatch is the message handler for the batch topic. The payload
// is a JSON array of action requests; a malformed array drops the whole
// message.
func (d *Dispatcher) HandleActionBatch(_ mqtt.Client, msg mqtt.Message) {
	var reqs []ActionRequest
	if err := json.Unmarshal(msg.Payload(), &reqs); err != nil {
		log.Printf("Error decoding action batch on %s: %v", msg.Topic(), err)
		metrics.CommandErrors.Inc()
		return
	}
	for _, req := range reqs {
		d.Dispatch(req)
	}
}

// Dispatch routes one request by action. Unknown or unset actions are
// ignored.
func (d *Dispatcher) Dispatch(req ActionRequest) {
	lcReq := lifecycle.Request{
		ID:          req.Id,
		ImageName:   req.ImageName,
		Tag:         req.Tag,
		ImageSource: req.ImageSource,
	}

	switch req.Action {
	case ActionStart:
		if err := d.lc.Start(context.Background(), lcReq); err != nil {
			log.Printf("Error starting workload %s: %v", req.Id, err)
		}
	case ActionStop:
		if err := d.lc.Stop(context.Background(), lcReq); err != nil {
			log.Printf("Error stopping workload %s: %v", req.Id, err)
		}
	default:
		// Unknown actions are a no-op.
	}
}
