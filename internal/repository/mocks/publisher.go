package mocks

import (
	"context"
	"sync"

	"github.com/RoGogDBD/inventory/internal/models"
)

type PublisherMock struct {
	mu     sync.Mutex
	Events []models.ItemEvent
}

func (m *PublisherMock) Publish(_ context.Context, event models.ItemEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *PublisherMock) Published() []models.ItemEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ItemEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
