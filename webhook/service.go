package webhook

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ack is the acknowledgment returned to the provider for an accepted
// delivery.
type Ack struct {
	Received bool `json:"received"`
}

// UseCase defines what happens to a webhook once it has been
// authenticated
type UseCase interface {
	Receive(ctx context.Context, kind string, event Event, attempt int) (Ack, error)
}

type Service struct {
	logger zerolog.Logger
}

// NewService creates a new webhook recording service
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

/* Receive is the contract point for event handling: idempotent
 * persistence and event-type routing would plug in here. For now it
 * records the delivery and acknowledges. Redeliveries of the same event
 * are acknowledged independently; the provider's retry semantics govern
 * retransmission and nothing is deduplicated.
 */
func (s *Service) Receive(ctx context.Context, kind string, event Event, attempt int) (Ack, error) {
	ref := uuid.New().String()
	s.logger.Info().
		Str("ref", ref).
		Str("kind", kind).
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Int("attempt", attempt).
		Msg("webhook received")

	return Ack{Received: true}, nil
}
