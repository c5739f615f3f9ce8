package stub

import (
	"context"

	"wallet-credit-score/internal/domain"
)

// StubEventSource returns fixed in-memory events for testing.
// Events can be intentionally unordered to test sorting.
// Implements ingestion.EventSource and ingestion.Fingerprinter.
type StubEventSource struct {
	name        string
	events      []*domain.RawEvent
	fingerprint string
	err         error
}

// NewStubEventSource creates a new stub source with the given events.
func NewStubEventSource(name string, events []*domain.RawEvent) *StubEventSource {
	return &StubEventSource{name: name, events: events}
}

// WithFingerprint sets the value returned by Fingerprint.
func (s *StubEventSource) WithFingerprint(fp string) *StubEventSource {
	s.fingerprint = fp
	return s
}

// WithError makes Events fail with err.
func (s *StubEventSource) WithError(err error) *StubEventSource {
	s.err = err
	return s
}

// Name returns the stub name.
func (s *StubEventSource) Name() string {
	return s.name
}

// Events returns shallow copies of the events to prevent reordering the originals.
func (s *StubEventSource) Events(_ context.Context) ([]*domain.RawEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]*domain.RawEvent, 0, len(s.events))
	for _, e := range s.events {
		c := *e
		result = append(result, &c)
	}
	return result, nil
}

// Fingerprint returns the configured fingerprint.
func (s *StubEventSource) Fingerprint(_ context.Context) (string, error) {
	return s.fingerprint, nil
}
