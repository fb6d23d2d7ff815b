package domain

import (
	"strings"
	"time"
)

// VendorStatus is the trading status of a vendor.
type VendorStatus string

const (
	VendorActive      VendorStatus = "ACTIVE"
	VendorInactive    VendorStatus = "INACTIVE"
	VendorBlacklisted VendorStatus = "BLACKLISTED"
)

const (
	DefaultVendorRating = 3.0
	MaxVendorRating     = 5.0
)

// Vendor supplies parts through purchase orders.
type Vendor struct {
	ID             int64           `json:"id"`
	VendorID       string          `json:"vendorId"`
	CompanyName    string          `json:"companyName"`
	ContactPerson  string          `json:"contactPerson,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address,omitempty"`
	City           string          `json:"city,omitempty"`
	State          string          `json:"state,omitempty"`
	Pincode        string          `json:"pincode,omitempty"`
	GSTIN          string          `json:"gstin,omitempty"`
	PAN            string          `json:"pan,omitempty"`
	Category       string          `json:"category,omitempty"`
	Rating         float64         `json:"rating"`
	PaymentTerms   string          `json:"paymentTerms,omitempty"`
	CreditLimit    *float64        `json:"creditLimit,omitempty"`
	Status         VendorStatus    `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	PurchaseOrders []PurchaseOrder `json:"purchaseOrders"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// PurchaseOrder is an order placed with a vendor.
type PurchaseOrder struct {
	ID          int64     `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	VendorID    int64     `json:"vendorId"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	OrderDate   time.Time `json:"orderDate"`
}

// VendorInput creates or replaces a vendor. A nil Rating means "use the default".
type VendorInput struct {
	VendorID      string       `json:"vendorId"`
	CompanyName   string       `json:"companyName"`
	ContactPerson string       `json:"contactPerson"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	Pincode       string       `json:"pincode"`
	GSTIN         string       `json:"gstin"`
	PAN           string       `json:"pan"`
	Category      string       `json:"category"`
	Rating        *float64     `json:"rating"`
	PaymentTerms  string       `json:"paymentTerms"`
	CreditLimit   *float64     `json:"creditLimit"`
	Status        VendorStatus `json:"status"`
	Notes         string       `json:"notes"`
}

// Validate checks required fields, the rating range and the status.
func (in VendorInput) Validate(requireVendorID bool) error {
	if requireVendorID && strings.TrimSpace(in.VendorID) == "" {
		return Invalid("vendorId is required")
	}
	if strings.TrimSpace(in.CompanyName) == "" || strings.TrimSpace(in.Phone) == "" {
		return Invalid("companyName and phone are required")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > MaxVendorRating) {
		return Invalid("rating must be between 0 and 5")
	}
	switch in.Status {
	case "", VendorActive, VendorInactive, VendorBlacklisted:
	default:
		return Invalid("unknown vendor status %q", in.Status)
	}
	return nil
}

// Vendor builds a vendor with defaults applied: rating 3.0 and status ACTIVE.
func (in VendorInput) Vendor() *Vendor {
	rating := DefaultVendorRating
	if in.Rating != nil {
		rating = *in.Rating
	}
	status := in.Status
	if status == "" {
		status = VendorActive
	}
	return &Vendor{
		VendorID:       strings.TrimSpace(in.VendorID),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		ContactPerson:  in.ContactPerson,
		Email:          in.Email,
		Phone:          strings.TrimSpace(in.Phone),
		Address:        in.Address,
		City:           in.City,
		State:          in.State,
		Pincode:        in.Pincode,
		GSTIN:          in.GSTIN,
		PAN:            in.PAN,
		Category:       in.Category,
		Rating:         rating,
		PaymentTerms:   in.PaymentTerms,
		CreditLimit:    in.CreditLimit,
		Status:         status,
		Notes:          in.Notes,
		PurchaseOrders: []PurchaseOrder{},
	}
}
