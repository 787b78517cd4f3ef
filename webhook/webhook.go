package webhook

import "encoding/json"

/* Event represents a provider notification delivered to the bridge
 * Consumed but never persisted; its lifetime is one HTTP request
 */
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
}

/* ParseEvent decodes a provider payload leniently: a body that is not
 * valid JSON yields an empty event instead of an error. A parse failure
 * must not look like an authentication failure to the provider, which
 * would otherwise keep redelivering forever.
 */
func ParseEvent(body []byte) Event {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}
	}
	return e
}
