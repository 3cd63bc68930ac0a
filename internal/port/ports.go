// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the dashboard
// controller from the backend, the page, the charting capability and the
// push channel.
package port

import (
	"context"

	"github.com/boddenberg/bills-dashboard-go/internal/domain"
)

// SummaryFetcher retrieves one dashboard payload for a query.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, q domain.Query) (*domain.SummaryPayload, error)
}

// PrincipalProvider supplies the acting principal threaded into every query.
type PrincipalProvider interface {
	Principal(ctx context.Context) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// Page is the set of elements the dashboard renders into. Lookups of an
// unknown id fail with *domain.ErrRender.
type Page interface {
	SetText(id, text string) error
	SetDisabled(id string, disabled bool) error
	SetHidden(id string, hidden bool) error
	ReplaceRows(tableID string, rows []domain.TableRow) error
	Canvas(id string) (domain.Canvas, error)
	ShowPanel(panelID string) error
}

// EventSubscriber delivers push notifications for one event name. The
// returned channel is closed when the subscription ends.
type EventSubscriber interface {
	Subscribe(ctx context.Context, event string) (<-chan domain.RealtimeEvent, error)
}
