package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shopfield/api/internal/platform/config"
	"github.com/shopfield/api/internal/repositories"
	"github.com/shopfield/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Catalog       services.CatalogService
	Cart          services.CartService
	Orders        services.OrderService
	Notifications services.NotificationService
	Users         services.UserService
	System        services.SystemService
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// ContainerOption customises optional container dependencies.
type ContainerOption func(*containerDeps)

type containerDeps struct {
	publisher services.OrderEventPublisher
	logger    *zap.Logger
}

// WithOrderEventPublisher wires the publisher used for order lifecycle events.
// Events are skipped when no publisher is configured.
func WithOrderEventPublisher(publisher services.OrderEventPublisher) ContainerOption {
	return func(d *containerDeps) {
		d.publisher = publisher
	}
}

// WithLogger attaches the structured logger services emit operational events through.
func WithLogger(logger *zap.Logger) ContainerOption {
	return func(d *containerDeps) {
		d.logger = logger
	}
}

// NewContainer constructs the runtime dependencies. Production wiring provides the Firestore
// registry, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...ContainerOption) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	var deps containerDeps
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	svc, err := buildServices(reg, deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients, background workers, or caches.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(reg repositories.Registry, deps containerDeps) (Services, error) {
	var svc Services

	logger := serviceLogger(deps.logger)

	productsRepo := reg.Products()
	if productsRepo != nil {
		catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
			Repository: productsRepo,
			Clock:      time.Now,
			Logger:     logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build catalog service: %w", err)
		}
		svc.Catalog = catalogSvc
	}

	cartsRepo := reg.Carts()
	if cartsRepo != nil && productsRepo != nil {
		cartSvc, err := services.NewCartService(services.CartServiceDeps{
			Repository: cartsRepo,
			Catalog:    productsRepo,
			Clock:      time.Now,
			Logger:     logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build cart service: %w", err)
		}
		svc.Cart = cartSvc
	}

	if notificationsRepo := reg.Notifications(); notificationsRepo != nil {
		notificationSvc, err := services.NewNotificationService(services.NotificationServiceDeps{
			Repository: notificationsRepo,
			Clock:      time.Now,
			Logger:     logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build notification service: %w", err)
		}
		svc.Notifications = notificationSvc
	}

	if usersRepo := reg.Users(); usersRepo != nil {
		userSvc, err := services.NewUserService(services.UserServiceDeps{
			Repository: usersRepo,
			Clock:      time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build user service: %w", err)
		}
		svc.Users = userSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	ordersRepo := reg.Orders()
	countersRepo := reg.Counters()
	if ordersRepo != nil && cartsRepo != nil && productsRepo != nil && countersRepo != nil {
		orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
			Orders:     ordersRepo,
			Carts:      cartsRepo,
			Catalog:    productsRepo,
			Counters:   countersRepo,
			Notifier:   svc.Notifications,
			Publisher:  deps.publisher,
			UnitOfWork: reg,
			Clock:      time.Now,
			Logger:     logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build order service: %w", err)
		}
		svc.Orders = orderSvc
	}

	return svc, nil
}

// serviceLogger adapts the zap logger to the keyed-event callback services accept.
func serviceLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	if logger == nil {
		return nil
	}
	return func(_ context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
