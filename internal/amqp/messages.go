package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by a TransactionEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight notification that a user's transaction
// changed. It carries only identifiers, the worker fetches current state
// from the database.
type TransactionEvent struct {
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(userID, transactionID, action string) *TransactionEvent {
	return &TransactionEvent{
		UserID:        userID,
		TransactionID: transactionID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, errEmptyUserID
	}
	return &msg, nil
}
