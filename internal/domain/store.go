package domain

import "context"

// Entity names a countable table.
type Entity string

const (
	EntityUsers          Entity = "users"
	EntityCustomers      Entity = "customers"
	EntityVehicles       Entity = "vehicles"
	EntityVendors        Entity = "vendors"
	EntityAppointments   Entity = "appointments"
	EntityServiceRecords Entity = "service_records"
	EntityParts          Entity = "parts"
)

// UserStore defines data access for users
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
}

// CustomerTx is the write surface available inside a customer transaction.
type CustomerTx interface {
	VehicleExists(ctx context.Context, regNumber string) (bool, error)
	CreateCustomer(ctx context.Context, customer *Customer) error
	CreateVehicle(ctx context.Context, vehicle *Vehicle) error
}

// CustomerStore defines data access for customers and their vehicles.
type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	UpdateCustomer(ctx context.Context, id int64, update CustomerUpdate) (*Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	CountVehiclesByCustomer(ctx context.Context, customerID int64) (int, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	// InCustomerTx runs fn atomically: every write made through the CustomerTx
	// is committed when fn returns nil and discarded otherwise.
	InCustomerTx(ctx context.Context, fn func(tx CustomerTx) error) error
}

// VendorStore defines data access for vendors.
type VendorStore interface {
	ListVendors(ctx context.Context) ([]Vendor, error)
	CreateVendor(ctx context.Context, vendor *Vendor) error
	UpdateVendor(ctx context.Context, id int64, vendor *Vendor) error
	DeleteVendor(ctx context.Context, id int64) error
	CountPurchaseOrdersByVendor(ctx context.Context, vendorID int64) (int, error)
}

// AppointmentStore defines data access for appointments.
type AppointmentStore interface {
	ListAppointments(ctx context.Context) ([]Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*Appointment, error)
	CreateAppointment(ctx context.Context, appointment *Appointment) error
	// UpdateAppointmentStatus moves id from `from` to `to` only if the stored
	// status still equals `from`.
	UpdateAppointmentStatus(ctx context.Context, id int64, from, to AppointmentStatus) error
}

// ServiceRecordStore defines data access for service history.
type ServiceRecordStore interface {
	ListServiceRecords(ctx context.Context) ([]ServiceRecord, error)
}

// StatsStore provides counters.
type StatsStore interface {
	Count(ctx context.Context, entity Entity) (int, error)
	CountAppointmentsByStatus(ctx context.Context, status AppointmentStatus) (int, error)
}

// Store is the full entity store.
type Store interface {
	UserStore
	CustomerStore
	VendorStore
	AppointmentStore
	ServiceRecordStore
	StatsStore
	Ping(ctx context.Context) error
}
