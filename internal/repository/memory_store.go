package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

// MemoryStore is an in-memory domain.Store. It backs the persistence facade
// when the database is unavailable: writes against ids it does not hold are
// accepted as no-ops, and every read returns copies.
type MemoryStore struct {
	mu             sync.RWMutex
	nextID         int64
	step           int64
	now            func() time.Time
	users          []*domain.User
	customers      []*domain.Customer
	vehicles       []*domain.Vehicle
	vendors        []*domain.Vendor
	appointments   []*domain.Appointment
	serviceRecords []*domain.ServiceRecord
	parts          []domain.Part
}

// NewMemoryStore creates a store seeded with the given fixtures
func NewMemoryStore(f Fixtures) *MemoryStore {
	s := &MemoryStore{now: time.Now, step: 1}
	s.load(f)
	return s
}

// NewFallbackStore creates the store the persistence facade degrades to.
// Fixture rows and every row it creates live at negative ids, so a write
// aimed at a database row (BIGSERIAL, always positive) never lands on an
// unrelated fixture and takes the missing-id path instead.
func NewFallbackStore(f Fixtures) *MemoryStore {
	s := &MemoryStore{now: time.Now, step: -1}
	s.load(f.negated())
	return s
}

func (s *MemoryStore) load(f Fixtures) {
	track := func(id int64) {
		switch {
		case s.step < 0 && id <= s.nextID:
			s.nextID = id - 1
		case s.step > 0 && id >= s.nextID:
			s.nextID = id + 1
		}
	}
	for i := range f.Customers {
		c := cloneCustomer(&f.Customers[i])
		for j := range c.Vehicles {
			v := cloneVehicle(&c.Vehicles[j])
			v.CustomerID = c.ID
			v.ServiceRecords = nil
			s.vehicles = append(s.vehicles, v)
			track(v.ID)
		}
		c.Vehicles = nil
		s.customers = append(s.customers, c)
		track(c.ID)
	}
	for i := range f.Vendors {
		v := cloneVendor(&f.Vendors[i])
		s.vendors = append(s.vendors, v)
		track(v.ID)
		for _, po := range v.PurchaseOrders {
			track(po.ID)
		}
	}
	for i := range f.Appointments {
		a := cloneAppointment(&f.Appointments[i])
		s.appointments = append(s.appointments, a)
		track(a.ID)
	}
	for i := range f.ServiceRecords {
		r := cloneServiceRecord(&f.ServiceRecords[i])
		s.serviceRecords = append(s.serviceRecords, r)
		track(r.ID)
	}
	s.parts = append(s.parts, f.Parts...)
	for _, p := range f.Parts {
		track(p.ID)
	}
	if s.nextID == 0 {
		s.nextID = s.step
	}
}

func (s *MemoryStore) allocID() int64 {
	id := s.nextID
	s.nextID += s.step
	return id
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// --- users ---

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NotFound("user", email)
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NotFound("user", id)
}

func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.NewRuleError(domain.ErrValidation, "user %s already exists", user.Email)
		}
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users = append(s.users, &cp)
	return nil
}

// --- customers ---

func (s *MemoryStore) ListCustomers(context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, *s.customerWithVehicles(c))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) customerWithVehicles(c *domain.Customer) *domain.Customer {
	cp := cloneCustomer(c)
	cp.Vehicles = []domain.Vehicle{}
	for _, v := range s.vehicles {
		if v.CustomerID != c.ID {
			continue
		}
		vc := cloneVehicle(v)
		for _, r := range s.serviceRecords {
			if r.VehicleID == v.ID {
				rc := cloneServiceRecord(r)
				rc.Vehicle, rc.Mechanic, rc.Parts = nil, nil, []domain.ServiceRecordPart{}
				vc.ServiceRecords = append(vc.ServiceRecords, *rc)
			}
		}
		cp.Vehicles = append(cp.Vehicles, *vc)
	}
	return cp
}

func (s *MemoryStore) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.findCustomer(id); c != nil {
		return s.customerWithVehicles(c), nil
	}
	return nil, domain.NotFound("customer", id)
}

func (s *MemoryStore) findCustomer(id int64) *domain.Customer {
	for _, c := range s.customers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, id int64, update domain.CustomerUpdate) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCustomer(id)
	if c == nil {
		simulated := &domain.Customer{ID: id, Vehicles: []domain.Vehicle{}, UpdatedAt: s.now()}
		update.Apply(simulated)
		return simulated, nil
	}
	update.Apply(c)
	c.UpdatedAt = s.now()
	return s.customerWithVehicles(c), nil
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.vehicleCount(id); n > 0 {
		return domain.NewRuleError(domain.ErrHasDependents,
			"Cannot delete customer with %d vehicle(s). Please reassign or remove vehicles first.", n)
	}
	if n := s.appointmentCount(id); n > 0 {
		return domain.NewRuleError(domain.ErrHasDependents,
			"Cannot delete customer with %d appointment(s). Please reassign or remove appointments first.", n)
	}
	for i, c := range s.customers {
		if c.ID == id {
			s.customers = append(s.customers[:i], s.customers[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) vehicleCount(customerID int64) int {
	n := 0
	for _, v := range s.vehicles {
		if v.CustomerID == customerID {
			n++
		}
	}
	return n
}

func (s *MemoryStore) appointmentCount(customerID int64) int {
	n := 0
	for _, a := range s.appointments {
		if a.CustomerID != nil && *a.CustomerID == customerID {
			n++
		}
	}
	return n
}

func (s *MemoryStore) CountVehiclesByCustomer(_ context.Context, customerID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vehicleCount(customerID), nil
}

func (s *MemoryStore) ListVehicles(context.Context) ([]domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, *cloneVehicle(v))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// InCustomerTx holds the write lock for the duration of fn and publishes the
// staged rows only when fn succeeds.
func (s *MemoryStore) InCustomerTx(ctx context.Context, fn func(tx domain.CustomerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memCustomerTx{store: s, startID: s.nextID}
	if err := fn(tx); err != nil {
		s.nextID = tx.startID
		return err
	}
	s.customers = append(s.customers, tx.customers...)
	s.vehicles = append(s.vehicles, tx.vehicles...)
	return nil
}

type memCustomerTx struct {
	store     *MemoryStore
	startID   int64
	customers []*domain.Customer
	vehicles  []*domain.Vehicle
}

func (t *memCustomerTx) VehicleExists(_ context.Context, regNumber string) (bool, error) {
	for _, v := range t.store.vehicles {
		if v.RegNumber == regNumber {
			return true, nil
		}
	}
	for _, v := range t.vehicles {
		if v.RegNumber == regNumber {
			return true, nil
		}
	}
	return false, nil
}

func (t *memCustomerTx) CreateCustomer(_ context.Context, c *domain.Customer) error {
	for _, group := range [][]*domain.Customer{t.store.customers, t.customers} {
		for _, existing := range group {
			if existing.CustomerID == c.CustomerID {
				return domain.NewRuleError(domain.ErrValidation, "Customer ID %s already exists.", c.CustomerID)
			}
		}
	}
	c.ID = t.store.allocID()
	c.CreatedAt = t.store.now()
	c.UpdatedAt = c.CreatedAt
	cp := cloneCustomer(c)
	cp.Vehicles = nil
	t.customers = append(t.customers, cp)
	return nil
}

func (t *memCustomerTx) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	exists, _ := t.VehicleExists(ctx, v.RegNumber)
	if exists {
		return domain.DuplicateRegistration(v.RegNumber)
	}
	v.ID = t.store.allocID()
	v.CreatedAt = t.store.now()
	t.vehicles = append(t.vehicles, cloneVehicle(v))
	return nil
}

// --- vendors ---

func (s *MemoryStore) ListVendors(context.Context) ([]domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, *cloneVendor(v))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) findVendor(id int64) (int, *domain.Vendor) {
	for i, v := range s.vendors {
		if v.ID == id {
			return i, v
		}
	}
	return -1, nil
}

func (s *MemoryStore) CreateVendor(_ context.Context, vendor *domain.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vendors {
		if v.VendorID == vendor.VendorID {
			return domain.NewRuleError(domain.ErrValidation, "Vendor ID %s already exists.", vendor.VendorID)
		}
	}
	vendor.ID = s.allocID()
	vendor.CreatedAt = s.now()
	vendor.UpdatedAt = vendor.CreatedAt
	if vendor.PurchaseOrders == nil {
		vendor.PurchaseOrders = []domain.PurchaseOrder{}
	}
	s.vendors = append(s.vendors, cloneVendor(vendor))
	return nil
}

func (s *MemoryStore) UpdateVendor(_ context.Context, id int64, vendor *domain.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendor.ID = id
	vendor.UpdatedAt = s.now()
	_, existing := s.findVendor(id)
	if existing == nil {
		return nil
	}
	vendor.VendorID = existing.VendorID
	vendor.CreatedAt = existing.CreatedAt
	vendor.PurchaseOrders = append([]domain.PurchaseOrder{}, existing.PurchaseOrders...)
	*existing = *cloneVendor(vendor)
	return nil
}

func (s *MemoryStore) DeleteVendor(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, v := s.findVendor(id)
	if v == nil {
		return nil
	}
	if n := len(v.PurchaseOrders); n > 0 {
		return domain.NewRuleError(domain.ErrHasDependents,
			"Cannot delete vendor with %d purchase order(s). Please reassign or remove orders first.", n)
	}
	s.vendors = append(s.vendors[:i], s.vendors[i+1:]...)
	return nil
}

func (s *MemoryStore) CountPurchaseOrdersByVendor(_ context.Context, vendorID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, v := s.findVendor(vendorID); v != nil {
		return len(v.PurchaseOrders), nil
	}
	return 0, nil
}

// --- appointments ---

func (s *MemoryStore) ListAppointments(context.Context) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, *cloneAppointment(a))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.ID == id {
			return cloneAppointment(a), nil
		}
	}
	return nil, domain.NotFound("appointment", id)
}

// CreateAppointment stores the appointment, resolving the customer and vehicle
// summaries from held rows and falling back to demo placeholders.
func (s *MemoryStore) CreateAppointment(_ context.Context, a *domain.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.allocID()
	a.CreatedAt = s.now()
	a.Customer = &domain.AppointmentCustomer{FirstName: "Demo", LastName: "User", Phone: "0000000000"}
	a.Vehicle = &domain.AppointmentVehicle{RegNumber: "DEMO-001", Model: "Generic Car"}
	if a.CustomerID != nil {
		if c := s.findCustomer(*a.CustomerID); c != nil {
			a.Customer = &domain.AppointmentCustomer{FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone}
		}
	}
	if a.VehicleID != nil {
		for _, v := range s.vehicles {
			if v.ID == *a.VehicleID {
				a.Vehicle = &domain.AppointmentVehicle{RegNumber: v.RegNumber, Model: v.Model}
				break
			}
		}
	}
	s.appointments = append(s.appointments, cloneAppointment(a))
	return nil
}

func (s *MemoryStore) UpdateAppointmentStatus(_ context.Context, id int64, from, to domain.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appointments {
		if a.ID != id {
			continue
		}
		if a.Status != from {
			return domain.NewRuleError(domain.ErrInvalidTransition,
				"Cannot change appointment status from %s to %s", a.Status, to)
		}
		a.Status = to
		return nil
	}
	return domain.NotFound("appointment", id)
}

// --- service history and counters ---

func (s *MemoryStore) ListServiceRecords(context.Context) ([]domain.ServiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ServiceRecord, 0, len(s.serviceRecords))
	for _, r := range s.serviceRecords {
		out = append(out, *cloneServiceRecord(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context, entity domain.Entity) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch entity {
	case domain.EntityUsers:
		return len(s.users), nil
	case domain.EntityCustomers:
		return len(s.customers), nil
	case domain.EntityVehicles:
		return len(s.vehicles), nil
	case domain.EntityVendors:
		return len(s.vendors), nil
	case domain.EntityAppointments:
		return len(s.appointments), nil
	case domain.EntityServiceRecords:
		return len(s.serviceRecords), nil
	case domain.EntityParts:
		return len(s.parts), nil
	}
	return 0, domain.Invalid("unknown entity %q", entity)
}

func (s *MemoryStore) CountAppointmentsByStatus(_ context.Context, status domain.AppointmentStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.appointments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

// --- copies ---

func cloneCustomer(c *domain.Customer) *domain.Customer {
	cp := *c
	if c.Vehicles != nil {
		cp.Vehicles = make([]domain.Vehicle, len(c.Vehicles))
		for i := range c.Vehicles {
			cp.Vehicles[i] = *cloneVehicle(&c.Vehicles[i])
		}
	}
	return &cp
}

func cloneVehicle(v *domain.Vehicle) *domain.Vehicle {
	cp := *v
	if v.ServiceRecords != nil {
		cp.ServiceRecords = make([]domain.ServiceRecord, len(v.ServiceRecords))
		for i := range v.ServiceRecords {
			cp.ServiceRecords[i] = *cloneServiceRecord(&v.ServiceRecords[i])
		}
	}
	return &cp
}

func cloneVendor(v *domain.Vendor) *domain.Vendor {
	cp := *v
	cp.PurchaseOrders = append([]domain.PurchaseOrder{}, v.PurchaseOrders...)
	if v.CreditLimit != nil {
		limit := *v.CreditLimit
		cp.CreditLimit = &limit
	}
	return &cp
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	cp := *a
	if a.CustomerID != nil {
		id := *a.CustomerID
		cp.CustomerID = &id
	}
	if a.VehicleID != nil {
		id := *a.VehicleID
		cp.VehicleID = &id
	}
	if a.Customer != nil {
		c := *a.Customer
		cp.Customer = &c
	}
	if a.Vehicle != nil {
		v := *a.Vehicle
		cp.Vehicle = &v
	}
	return &cp
}

func cloneServiceRecord(r *domain.ServiceRecord) *domain.ServiceRecord {
	cp := *r
	if r.MechanicID != nil {
		id := *r.MechanicID
		cp.MechanicID = &id
	}
	if r.Vehicle != nil {
		cp.Vehicle = cloneVehicle(r.Vehicle)
	}
	if r.Mechanic != nil {
		m := *r.Mechanic
		cp.Mechanic = &m
	}
	cp.Parts = make([]domain.ServiceRecordPart, len(r.Parts))
	for i, p := range r.Parts {
		cp.Parts[i] = p
		if p.Part != nil {
			part := *p.Part
			cp.Parts[i].Part = &part
		}
	}
	return &cp
}
