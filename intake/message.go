package intake

import (
	"bytes"
	"encoding/json"
)

// wirePrice accepts a price encoded either as a bare JSON number (100.00)
// or a quoted decimal string ("100.00").
type wirePrice string

func (p *wirePrice) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	*p = wirePrice(b)
	return nil
}

// IntentMessage is the wire shape of one intake-queue message: a JSON
// object with an `action` discriminator and the fields relevant to that
// action.
type IntentMessage struct {
	Action string `json:"action"`

	// place fields
	UserID      uint64    `json:"userId"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Type        string    `json:"type"`
	Price       wirePrice `json:"price"`
	Quantity    uint64    `json:"quantity"`
	TimeInForce string    `json:"timeInForce"`

	// cancel fields
	OrderID uint64 `json:"orderId"`
}

func decodeIntent(payload []byte) (IntentMessage, error) {
	var msg IntentMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return IntentMessage{}, err
	}
	return msg, nil
}
