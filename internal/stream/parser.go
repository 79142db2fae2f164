package stream

import (
	"encoding/json"
	"fmt"

	"workorder_dashboard/internal/models"
)

// ErrMalformedPayload marks a pushed message that is not a JSON object.
// A malformed payload drops that single event; it is never fatal to the
// connection.
var ErrMalformedPayload = fmt.Errorf("stream: malformed payload")

// ParseLogEvent decodes one raw stream message into a LogEvent. Unknown
// top-level fields are preserved; individually bad known fields are
// tolerated. Only a payload that fails to decode as a JSON object is
// rejected.
func ParseLogEvent(raw []byte) (models.LogEvent, error) {
	var ev models.LogEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return models.LogEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return ev, nil
}
