package amqp

import (
	"encoding/json"
	"time"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
)

// RecalcMessage asks the worker to recompute dashboard aggregates for one
// user and period. It carries only identifiers and bounds, the worker reads
// the transactions from the database.
type RecalcMessage struct {
	UserID    int64     `json:"user_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecalcMessage(userID int64, p core.Period) *RecalcMessage {
	return &RecalcMessage{
		UserID:    userID,
		Start:     p.Start,
		End:       p.End,
		Timestamp: time.Now(),
	}
}

func (m *RecalcMessage) Period() core.Period {
	return core.NewPeriod(m.Start, m.End)
}

func (m *RecalcMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecalcMessageFromJSON(data []byte) (*RecalcMessage, error) {
	var msg RecalcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
