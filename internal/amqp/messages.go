package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entity kinds carried in transaction events.
const (
	EntityGasto      = "gasto"
	EntityRendimento = "rendimento"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight notification that a user's record for a
// period changed. Consumers fetch the current data themselves, so the event
// carries only the coordinates of the change.
type TransactionEvent struct {
	MessageID string    `json:"messageId"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	UserID    string    `json:"user"`
	RecordID  string    `json:"recordId"`
	Mes       string    `json:"mes"`
	Ano       int       `json:"ano"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent stamps a fresh event with a message id and timestamp.
func NewTransactionEvent(entity, action, userID, recordID, mes string, ano int) *TransactionEvent {
	return &TransactionEvent{
		MessageID: uuid.NewString(),
		Entity:    entity,
		Action:    action,
		UserID:    userID,
		RecordID:  recordID,
		Mes:       mes,
		Ano:       ano,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
