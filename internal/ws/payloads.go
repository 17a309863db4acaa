package ws

import "encoding/json"

// Envelope wraps every message in both directions
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// server → client
type TapResultPayload struct {
	Applied  bool  `json:"applied"`
	TapValue int64 `json:"tap_value"`
	Depleted bool  `json:"depleted"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encode(msgType string, data any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
