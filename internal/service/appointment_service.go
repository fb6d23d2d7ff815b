package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/aryan0dhankhar/workshop/internal/domain"
	"github.com/aryan0dhankhar/workshop/internal/infrastructure/events"
	"github.com/aryan0dhankhar/workshop/internal/observability/metrics"
	"github.com/aryan0dhankhar/workshop/internal/security/audit"
)

// AppointmentService books appointments and drives their lifecycle
type AppointmentService struct {
	store     domain.AppointmentStore
	publisher events.Publisher
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(store domain.AppointmentStore, publisher events.Publisher, auditLog *audit.Logger, logger *slog.Logger) *AppointmentService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &AppointmentService{store: store, publisher: publisher, audit: auditLog, logger: logger}
}

// List returns appointments by date, latest first
func (s *AppointmentService) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.store.ListAppointments(ctx)
}

// Create books a PENDING appointment
func (s *AppointmentService) Create(ctx context.Context, in domain.AppointmentInput) (*domain.Appointment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a := in.Appointment()
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("appointment created", slog.Int64("id", a.ID), slog.String("service_type", a.ServiceType))
	s.publish(ctx, events.New(events.TypeAppointmentCreated, map[string]any{
		"id":          a.ID,
		"serviceType": a.ServiceType,
		"date":        a.Date,
	}))
	return a, nil
}

// Transition moves appointment id to status `to`. Only administrators may
// transition. A missing appointment is a no-op and returns (nil, nil);
// moves outside the lifecycle table are rejected without touching the record.
func (s *AppointmentService) Transition(ctx context.Context, actor domain.SessionUser, id int64, to domain.AppointmentStatus) (*domain.Appointment, error) {
	resourceID := strconv.FormatInt(id, 10)
	if !actor.IsAdmin() {
		s.audit.LogDenied(ctx, actor.Email, "appointment transition requires ADMIN")
		return nil, domain.NewRuleError(domain.ErrForbidden, "Only administrators can change appointment status")
	}
	if !to.Valid() {
		return nil, domain.Invalid("unknown appointment status %q", to)
	}

	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("transition on missing appointment ignored", slog.Int64("id", id))
			return nil, nil
		}
		return nil, err
	}

	from := a.Status
	if err := a.TransitionTo(to); err != nil {
		s.audit.LogAction(ctx, actor.Email, "transition", "appointments", resourceID, "rejected", err.Error())
		return nil, err
	}

	if err := s.store.UpdateAppointmentStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	metrics.ObserveAppointmentTransition(string(from), string(to))
	s.audit.LogAction(ctx, actor.Email, "transition", "appointments", resourceID, "success",
		string(from)+" -> "+string(to))
	s.publish(ctx, events.New(events.TypeAppointmentStatusChanged, map[string]any{
		"id":   id,
		"from": from,
		"to":   to,
	}))
	return a, nil
}

func (s *AppointmentService) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish event", slog.String("type", ev.Type), slog.String("error", err.Error()))
	}
}
