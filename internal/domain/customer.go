package domain

import (
	"strings"
	"time"
)

// Customer owns zero or more vehicles.
type Customer struct {
	ID         int64     `json:"id"`
	CustomerID string    `json:"customerId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	Address    string    `json:"address,omitempty"`
	GSTIN      string    `json:"gstin,omitempty"`
	Vehicles   []Vehicle `json:"vehicles"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FullName is the display name copied onto owned vehicles.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Vehicle is registered to exactly one customer. RegNumber is globally unique.
// The Owner* fields are a read-path copy of the customer at creation time and
// are not kept in sync on customer edits.
type Vehicle struct {
	ID             int64           `json:"id"`
	RegNumber      string          `json:"regNumber"`
	Model          string          `json:"model"`
	Type           string          `json:"type"`
	OwnerName      string          `json:"ownerName"`
	OwnerPhone     string          `json:"ownerPhone,omitempty"`
	OwnerAddress   string          `json:"ownerAddress,omitempty"`
	OwnerGSTIN     string          `json:"ownerGstin,omitempty"`
	ChassisNumber  string          `json:"chassisNumber,omitempty"`
	EngineNumber   string          `json:"engineNumber,omitempty"`
	CustomerID     int64           `json:"customerId"`
	ServiceRecords []ServiceRecord `json:"serviceRecords,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// VehicleInput is one vehicle in a customer creation payload.
type VehicleInput struct {
	RegNumber     string `json:"regNumber"`
	Model         string `json:"model"`
	Type          string `json:"type"`
	ChassisNumber string `json:"chassisNumber"`
	EngineNumber  string `json:"engineNumber"`
}

// CustomerInput creates a customer together with its vehicles.
type CustomerInput struct {
	CustomerID string         `json:"customerId"`
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Address    string         `json:"address"`
	GSTIN      string         `json:"gstin"`
	Vehicles   []VehicleInput `json:"vehicles"`
}

// Normalize trims whitespace from identifying fields.
func (in *CustomerInput) Normalize() {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	for i := range in.Vehicles {
		in.Vehicles[i].RegNumber = strings.TrimSpace(in.Vehicles[i].RegNumber)
	}
}

// Validate checks required fields and rejects a payload that repeats a
// registration number.
func (in CustomerInput) Validate() error {
	if in.CustomerID == "" || in.FirstName == "" || in.Phone == "" {
		return Invalid("customerId, firstName and phone are required")
	}
	seen := make(map[string]struct{}, len(in.Vehicles))
	for _, v := range in.Vehicles {
		if v.RegNumber == "" || v.Model == "" {
			return Invalid("vehicle regNumber and model are required")
		}
		if _, dup := seen[v.RegNumber]; dup {
			return DuplicateRegistration(v.RegNumber)
		}
		seen[v.RegNumber] = struct{}{}
	}
	return nil
}

// Customer builds the customer row described by the payload.
func (in CustomerInput) Customer() *Customer {
	return &Customer{
		CustomerID: in.CustomerID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Phone:      in.Phone,
		Email:      in.Email,
		Address:    in.Address,
		GSTIN:      in.GSTIN,
		Vehicles:   []Vehicle{},
	}
}

// VehicleFor builds a vehicle row owned by customerID with the owner fields
// copied from the payload.
func (in CustomerInput) VehicleFor(v VehicleInput, customerID int64) *Vehicle {
	return &Vehicle{
		RegNumber:     v.RegNumber,
		Model:         v.Model,
		Type:          v.Type,
		OwnerName:     in.FirstName + " " + in.LastName,
		OwnerPhone:    in.Phone,
		OwnerAddress:  in.Address,
		OwnerGSTIN:    in.GSTIN,
		ChassisNumber: v.ChassisNumber,
		EngineNumber:  v.EngineNumber,
		CustomerID:    customerID,
	}
}

// CustomerUpdate replaces the editable customer fields.
type CustomerUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	GSTIN     string `json:"gstin"`
}

// Validate checks required fields.
func (u CustomerUpdate) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.Phone) == "" {
		return Invalid("firstName and phone are required")
	}
	return nil
}

// Apply copies the update onto c.
func (u CustomerUpdate) Apply(c *Customer) {
	c.FirstName = strings.TrimSpace(u.FirstName)
	c.LastName = strings.TrimSpace(u.LastName)
	c.Phone = strings.TrimSpace(u.Phone)
	c.Email = u.Email
	c.Address = u.Address
	c.GSTIN = u.GSTIN
}
