package feed

import (
	"encoding/json"
	"fmt"

	"github.com/paystream/paystream/pkg/models"
)

// Event type discriminators on the wire.
const (
	EventConnected = "connected"
	EventUpdate    = "update"
)

type connectedEvent struct {
	Type string `json:"type"`
}

type updateEvent struct {
	Type      string            `json:"type"`
	Transfers []models.Transfer `json:"transfers"`
}

// EncodeConnected produces the acknowledgement event sent once at
// subscription start, before any data.
func EncodeConnected() ([]byte, error) {
	data, err := json.Marshal(connectedEvent{Type: EventConnected})
	if err != nil {
		return nil, fmt.Errorf("failed to encode connected event: %w", err)
	}
	return data, nil
}

// EncodeUpdate produces an update event carrying the full current transfer
// list. Each event is a single JSON document; websocket framing keeps
// messages self-delimited for the client decoder.
func EncodeUpdate(transfers []models.Transfer) ([]byte, error) {
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	data, err := json.Marshal(updateEvent{Type: EventUpdate, Transfers: transfers})
	if err != nil {
		return nil, fmt.Errorf("failed to encode update event: %w", err)
	}
	return data, nil
}
