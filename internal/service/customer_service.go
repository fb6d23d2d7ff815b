package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/events"
)

// CustomerService manages customers and the vehicles registered to them
type CustomerService struct {
	store     domain.CustomerStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(store domain.CustomerStore, publisher events.Publisher, logger *slog.Logger) *CustomerService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CustomerService{store: store, publisher: publisher, logger: logger}
}

// List returns customers newest first with their vehicles and service records
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// Get returns one customer with vehicles
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

// ListVehicles returns every vehicle newest first
func (s *CustomerService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.store.ListVehicles(ctx)
}

// Create stores the customer and all of its vehicles as one unit. Any
// registration already on file aborts the whole operation before a row is
// written; the store's unique constraint still catches a concurrent insert
// and rolls the transaction back.
func (s *CustomerService) Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Customer
	err := s.store.InCustomerTx(ctx, func(tx domain.CustomerTx) error {
		for _, v := range in.Vehicles {
			exists, err := tx.VehicleExists(ctx, v.RegNumber)
			if err != nil {
				return err
			}
			if exists {
				return domain.DuplicateRegistration(v.RegNumber)
			}
		}

		c := in.Customer()
		if err := tx.CreateCustomer(ctx, c); err != nil {
			return err
		}
		for _, vin := range in.Vehicles {
			v := in.VehicleFor(vin, c.ID)
			if err := tx.CreateVehicle(ctx, v); err != nil {
				return err
			}
			c.Vehicles = append(c.Vehicles, *v)
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		slog.Int64("id", created.ID),
		slog.String("customer_id", created.CustomerID),
		slog.Int("vehicles", len(created.Vehicles)),
	)
	s.publish(ctx, events.New(events.TypeCustomerCreated, map[string]any{
		"id":         created.ID,
		"customerId": created.CustomerID,
		"vehicles":   len(created.Vehicles),
	}))
	return created, nil
}

// Update replaces the editable customer fields. Owner fields already copied
// onto vehicles keep their creation-time values.
func (s *CustomerService) Update(ctx context.Context, id int64, update domain.CustomerUpdate) (*domain.Customer, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateCustomer(ctx, id, update)
}

// Delete removes a customer that owns no vehicles
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	n, err := s.store.CountVehiclesByCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count vehicles: %w", err)
	}
	if n > 0 {
		return domain.NewRuleError(domain.ErrHasDependents,
			"Cannot delete customer with %d vehicle(s). Please reassign or remove vehicles first.", n)
	}
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", slog.Int64("id", id))
	return nil
}

func (s *CustomerService) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish event", slog.String("type", ev.Type), slog.String("error", err.Error()))
	}
}
