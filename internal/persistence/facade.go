package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/observability/metrics"
	"github.com/aryan0dhankhar/workshop/internal/observability/tracing"
	"github.com/aryan0dhankhar/workshop/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/workshop/internal/reliability/retry"
)

const (
	reasonError       = "error"
	reasonEmpty       = "empty"
	reasonCircuitOpen = "circuit_open"
)

// Options configures a Facade. Zero values select the defaults.
type Options struct {
	Rules   map[Operation]Rule
	Retry   *retry.Config
	Breaker *circuitbreaker.CircuitBreaker
	Logger  *slog.Logger
}

// Facade is a domain.Store that shields callers from primary store outages.
// Business errors from the primary pass through unchanged. Transient failures
// and an open circuit are resolved per operation by the rule table: the
// fallback store answers, or a default or not-found result is returned.
type Facade struct {
	primary  domain.Store
	fallback domain.Store
	rules    map[Operation]Rule
	retry    *retry.Config
	breaker  *circuitbreaker.CircuitBreaker
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewFacade wraps primary, degrading to fallback
func NewFacade(primary, fallback domain.Store, opts Options) *Facade {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules
	}
	if opts.Retry == nil {
		opts.Retry = retry.DefaultConfig()
	}
	rcfg := *opts.Retry
	rcfg.IsRetryable = IsTransient
	if opts.Breaker == nil {
		opts.Breaker = circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	}

	f := &Facade{
		primary:  primary,
		fallback: fallback,
		rules:    opts.Rules,
		retry:    &rcfg,
		breaker:  opts.Breaker,
		logger:   opts.Logger,
		tracer:   tracing.Tracer(),
	}
	f.breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		metrics.SetCircuitState(int(to))
		f.logger.Warn("store circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	metrics.SetCircuitState(int(f.breaker.GetState()))
	return f
}

// IsTransient reports whether err is an infrastructure failure rather than a
// business rule outcome. Cancellation by the caller is neither.
func IsTransient(err error) bool {
	if err == nil || domain.IsBusinessError(err) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (f *Facade) rule(op Operation) Rule {
	if r, ok := f.rules[op]; ok {
		return r
	}
	return Rule{OnError: UseFallback}
}

// call executes one operation through breaker, retry, policy and telemetry.
func call[T any](
	ctx context.Context,
	f *Facade,
	op Operation,
	zero T,
	isEmpty func(T) bool,
	do func(ctx context.Context, s domain.Store) (T, error),
) (T, error) {
	ctx, span := f.tracer.Start(ctx, "store."+string(op))
	defer span.End()
	rule := f.rule(op)

	var res T
	err := f.breaker.Execute(func() error {
		var err error
		if rule.Retry {
			res, err = retry.Do(ctx, f.retry, f.logger, string(op), func(ctx context.Context) (T, error) {
				return do(ctx, f.primary)
			})
		} else {
			res, err = do(ctx, f.primary)
		}
		return err
	}, IsTransient)

	var reason string
	switch {
	case err == nil && rule.OnEmpty && isEmpty != nil && isEmpty(res):
		reason = reasonEmpty
	case err == nil:
		metrics.ObserveStoreOperation(string(op), "ok")
		return res, nil
	case !IsTransient(err):
		metrics.ObserveStoreOperation(string(op), "business_error")
		span.SetAttributes(attribute.String("store.result", "business_error"))
		return zero, err
	case errors.Is(err, circuitbreaker.ErrOpen):
		reason = reasonCircuitOpen
	default:
		reason = reasonError
		span.RecordError(err)
	}

	policy := rule.OnError
	if reason == reasonEmpty {
		policy = UseFallback
	}
	span.SetAttributes(
		attribute.String("store.degraded", reason),
		attribute.String("store.policy", policy.String()),
	)
	attrs := []any{
		slog.String("operation", string(op)),
		slog.String("reason", reason),
		slog.String("policy", policy.String()),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	f.logger.Warn("store degraded", attrs...)
	metrics.ObserveFallback(string(op), reason)

	switch policy {
	case ReturnDefault:
		metrics.ObserveStoreOperation(string(op), "default")
		return zero, nil
	case ReturnNotFound:
		metrics.ObserveStoreOperation(string(op), "not_found")
		return zero, domain.NewRuleError(domain.ErrNotFound, "%s: record unavailable", op)
	}

	metrics.ObserveStoreOperation(string(op), "fallback")
	out, ferr := do(ctx, f.fallback)
	if ferr != nil && rule.Write && errors.Is(ferr, domain.ErrNotFound) {
		f.logger.Info("degraded write simulated", slog.String("operation", string(op)))
		return zero, nil
	}
	if ferr != nil {
		if IsTransient(ferr) {
			span.SetStatus(codes.Error, "fallback failed")
			f.logger.Error("fallback store failed",
				slog.String("operation", string(op)),
				slog.String("error", ferr.Error()),
			)
		}
		return zero, ferr
	}
	return out, nil
}

func mutate(ctx context.Context, f *Facade, op Operation, do func(ctx context.Context, s domain.Store) error) error {
	_, err := call[struct{}](ctx, f, op, struct{}{}, nil, func(ctx context.Context, s domain.Store) (struct{}, error) {
		return struct{}{}, do(ctx, s)
	})
	return err
}

func emptySlice[T any](v []T) bool { return len(v) == 0 }

// Ping reports the primary store's reachability without degrading.
func (f *Facade) Ping(ctx context.Context) error {
	return f.primary.Ping(ctx)
}

// --- users ---

func (f *Facade) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return call[*domain.User](ctx, f, OpGetUserByEmail, nil, nil, func(ctx context.Context, s domain.Store) (*domain.User, error) {
		return s.GetUserByEmail(ctx, email)
	})
}

func (f *Facade) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return call[*domain.User](ctx, f, OpGetUserByID, nil, nil, func(ctx context.Context, s domain.Store) (*domain.User, error) {
		return s.GetUserByID(ctx, id)
	})
}

func (f *Facade) CreateUser(ctx context.Context, user *domain.User) error {
	return mutate(ctx, f, OpCreateUser, func(ctx context.Context, s domain.Store) error {
		return s.CreateUser(ctx, user)
	})
}

// --- customers ---

func (f *Facade) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return call(ctx, f, OpListCustomers, []domain.Customer{}, emptySlice[domain.Customer], func(ctx context.Context, s domain.Store) ([]domain.Customer, error) {
		return s.ListCustomers(ctx)
	})
}

func (f *Facade) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return call[*domain.Customer](ctx, f, OpGetCustomer, nil, nil, func(ctx context.Context, s domain.Store) (*domain.Customer, error) {
		return s.GetCustomer(ctx, id)
	})
}

func (f *Facade) UpdateCustomer(ctx context.Context, id int64, update domain.CustomerUpdate) (*domain.Customer, error) {
	return call[*domain.Customer](ctx, f, OpUpdateCustomer, nil, nil, func(ctx context.Context, s domain.Store) (*domain.Customer, error) {
		return s.UpdateCustomer(ctx, id, update)
	})
}

func (f *Facade) DeleteCustomer(ctx context.Context, id int64) error {
	return mutate(ctx, f, OpDeleteCustomer, func(ctx context.Context, s domain.Store) error {
		return s.DeleteCustomer(ctx, id)
	})
}

func (f *Facade) CountVehiclesByCustomer(ctx context.Context, customerID int64) (int, error) {
	return call[int](ctx, f, OpCountVehiclesByCustomer, 0, nil, func(ctx context.Context, s domain.Store) (int, error) {
		return s.CountVehiclesByCustomer(ctx, customerID)
	})
}

func (f *Facade) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return call(ctx, f, OpListVehicles, []domain.Vehicle{}, emptySlice[domain.Vehicle], func(ctx context.Context, s domain.Store) ([]domain.Vehicle, error) {
		return s.ListVehicles(ctx)
	})
}

// InCustomerTx runs fn against the primary store and, when the primary fails
// transiently, runs it again from scratch against the fallback store. fn must
// therefore build its entities inside the callback.
func (f *Facade) InCustomerTx(ctx context.Context, fn func(tx domain.CustomerTx) error) error {
	return mutate(ctx, f, OpInCustomerTx, func(ctx context.Context, s domain.Store) error {
		return s.InCustomerTx(ctx, fn)
	})
}

// --- vendors ---

func (f *Facade) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return call(ctx, f, OpListVendors, []domain.Vendor{}, emptySlice[domain.Vendor], func(ctx context.Context, s domain.Store) ([]domain.Vendor, error) {
		return s.ListVendors(ctx)
	})
}

func (f *Facade) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	return mutate(ctx, f, OpCreateVendor, func(ctx context.Context, s domain.Store) error {
		return s.CreateVendor(ctx, vendor)
	})
}

func (f *Facade) UpdateVendor(ctx context.Context, id int64, vendor *domain.Vendor) error {
	return mutate(ctx, f, OpUpdateVendor, func(ctx context.Context, s domain.Store) error {
		return s.UpdateVendor(ctx, id, vendor)
	})
}

func (f *Facade) DeleteVendor(ctx context.Context, id int64) error {
	return mutate(ctx, f, OpDeleteVendor, func(ctx context.Context, s domain.Store) error {
		return s.DeleteVendor(ctx, id)
	})
}

func (f *Facade) CountPurchaseOrdersByVendor(ctx context.Context, vendorID int64) (int, error) {
	return call[int](ctx, f, OpCountPurchaseOrdersByVendor, 0, nil, func(ctx context.Context, s domain.Store) (int, error) {
		return s.CountPurchaseOrdersByVendor(ctx, vendorID)
	})
}

// --- appointments ---

func (f *Facade) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return call(ctx, f, OpListAppointments, []domain.Appointment{}, emptySlice[domain.Appointment], func(ctx context.Context, s domain.Store) ([]domain.Appointment, error) {
		return s.ListAppointments(ctx)
	})
}

func (f *Facade) GetAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	return call[*domain.Appointment](ctx, f, OpGetAppointment, nil, nil, func(ctx context.Context, s domain.Store) (*domain.Appointment, error) {
		return s.GetAppointment(ctx, id)
	})
}

func (f *Facade) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	return mutate(ctx, f, OpCreateAppointment, func(ctx context.Context, s domain.Store) error {
		return s.CreateAppointment(ctx, a)
	})
}

func (f *Facade) UpdateAppointmentStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	return mutate(ctx, f, OpUpdateAppointmentStatus, func(ctx context.Context, s domain.Store) error {
		return s.UpdateAppointmentStatus(ctx, id, from, to)
	})
}

// --- service history and counters ---

func (f *Facade) ListServiceRecords(ctx context.Context) ([]domain.ServiceRecord, error) {
	return call(ctx, f, OpListServiceRecords, []domain.ServiceRecord{}, emptySlice[domain.ServiceRecord], func(ctx context.Context, s domain.Store) ([]domain.ServiceRecord, error) {
		return s.ListServiceRecords(ctx)
	})
}

func (f *Facade) Count(ctx context.Context, entity domain.Entity) (int, error) {
	return call[int](ctx, f, OpCount, 0, nil, func(ctx context.Context, s domain.Store) (int, error) {
		return s.Count(ctx, entity)
	})
}

func (f *Facade) CountAppointmentsByStatus(ctx context.Context, status domain.AppointmentStatus) (int, error) {
	return call[int](ctx, f, OpCountAppointmentsByStatus, 0, nil, func(ctx context.Context, s domain.Store) (int, error) {
		return s.CountAppointmentsByStatus(ctx, status)
	})
}

var _ domain.Store = (*Facade)(nil)
