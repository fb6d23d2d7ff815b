package persistence

// Policy is what the facade does when the primary store fails transiently.
type Policy int

const (
	// UseFallback runs the same operation against the fallback store.
	UseFallback Policy = iota
	// ReturnDefault answers with the operation's zero result (empty list, 0).
	ReturnDefault
	// ReturnNotFound answers with a not-found business error.
	ReturnNotFound
)

func (p Policy) String() string {
	switch p {
	case UseFallback:
		return "fallback"
	case ReturnDefault:
		return "default"
	case ReturnNotFound:
		return "not_found"
	}
	return "unknown"
}

// Rule is the degradation behavior of one operation.
type Rule struct {
	OnError Policy
	// OnEmpty also degrades when the primary answers with no rows.
	OnEmpty bool
	// Retry repeats transient read failures before degrading. Writes never retry.
	Retry bool
	// Write marks a mutation. A degraded write whose target the fallback does
	// not hold is reported as a simulated success.
	Write bool
}

// Operation names a store method.
type Operation string

const (
	OpGetUserByEmail              Operation = "GetUserByEmail"
	OpGetUserByID                 Operation = "GetUserByID"
	OpCreateUser                  Operation = "CreateUser"
	OpListCustomers               Operation = "ListCustomers"
	OpGetCustomer                 Operation = "GetCustomer"
	OpUpdateCustomer              Operation = "UpdateCustomer"
	OpDeleteCustomer              Operation = "DeleteCustomer"
	OpCountVehiclesByCustomer     Operation = "CountVehiclesByCustomer"
	OpListVehicles                Operation = "ListVehicles"
	OpInCustomerTx                Operation = "InCustomerTx"
	OpListVendors                 Operation = "ListVendors"
	OpCreateVendor                Operation = "CreateVendor"
	OpUpdateVendor                Operation = "UpdateVendor"
	OpDeleteVendor                Operation = "DeleteVendor"
	OpCountPurchaseOrdersByVendor Operation = "CountPurchaseOrdersByVendor"
	OpListAppointments            Operation = "ListAppointments"
	OpGetAppointment              Operation = "GetAppointment"
	OpCreateAppointment           Operation = "CreateAppointment"
	OpUpdateAppointmentStatus     Operation = "UpdateAppointmentStatus"
	OpListServiceRecords          Operation = "ListServiceRecords"
	OpCount                       Operation = "Count"
	OpCountAppointmentsByStatus   Operation = "CountAppointmentsByStatus"
)

var (
	read     = Rule{OnError: UseFallback, Retry: true}
	lookup   = Rule{OnError: ReturnNotFound, Retry: true}
	counter  = Rule{OnError: ReturnDefault, Retry: true}
	mutation = Rule{OnError: UseFallback, Write: true}
)

// DefaultRules is the policy table used unless Options.Rules overrides it.
// Credentials are never served from the fallback dataset.
var DefaultRules = map[Operation]Rule{
	OpGetUserByEmail: lookup,
	OpGetUserByID:    lookup,
	OpCreateUser:     mutation,

	OpListCustomers:           read,
	OpGetCustomer:             read,
	OpUpdateCustomer:          mutation,
	OpDeleteCustomer:          mutation,
	OpCountVehiclesByCustomer: counter,
	OpListVehicles:            read,
	OpInCustomerTx:            mutation,

	OpListVendors:                 {OnError: UseFallback, OnEmpty: true, Retry: true},
	OpCreateVendor:                mutation,
	OpUpdateVendor:                mutation,
	OpDeleteVendor:                mutation,
	OpCountPurchaseOrdersByVendor: counter,

	OpListAppointments:        read,
	OpGetAppointment:          read,
	OpCreateAppointment:       mutation,
	OpUpdateAppointmentStatus: mutation,

	OpListServiceRecords:        read,
	OpCount:                     counter,
	OpCountAppointmentsByStatus: counter,
}
