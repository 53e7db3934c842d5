package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/item-validation/internal/application"
	"github.com/example/item-validation/internal/validation"
)

// ServiceFactory assists tests with constructing application services using
// deterministic clocks.
type ServiceFactory struct {
	Clock *Clock
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{Clock: NewClock(time.Time{})}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// ItemServiceDeps captures dependencies for constructing an item service.
// A nil Items uses a fresh ItemStore.
type ItemServiceDeps struct {
	Items     application.ItemRepository
	Validator validation.Validator[application.ItemForm]
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewItemService builds an item service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewItemService(deps ItemServiceDeps) *application.ItemService {
	items := deps.Items
	if items == nil {
		items = NewItemStore()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewItemServiceWithLogger(items, deps.Validator, now, deps.Logger)
}
