package repository

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

// Fixtures is the dataset a MemoryStore starts from.
type Fixtures struct {
	Customers      []domain.Customer
	Vendors        []domain.Vendor
	Appointments   []domain.Appointment
	ServiceRecords []domain.ServiceRecord
	Parts          []domain.Part
}

// negated returns a deep copy with every id and reference moved to its
// negative counterpart. Ids that are already negative are kept.
func (f Fixtures) negated() Fixtures {
	neg := func(id int64) int64 {
		if id > 0 {
			return -id
		}
		return id
	}
	negPtr := func(id *int64) *int64 {
		if id == nil {
			return nil
		}
		v := neg(*id)
		return &v
	}

	var out Fixtures
	for i := range f.Customers {
		c := cloneCustomer(&f.Customers[i])
		c.ID = neg(c.ID)
		for j := range c.Vehicles {
			c.Vehicles[j].ID = neg(c.Vehicles[j].ID)
			c.Vehicles[j].CustomerID = c.ID
		}
		out.Customers = append(out.Customers, *c)
	}
	for i := range f.Vendors {
		v := cloneVendor(&f.Vendors[i])
		v.ID = neg(v.ID)
		for j := range v.PurchaseOrders {
			v.PurchaseOrders[j].ID = neg(v.PurchaseOrders[j].ID)
			v.PurchaseOrders[j].VendorID = v.ID
		}
		out.Vendors = append(out.Vendors, *v)
	}
	for i := range f.Appointments {
		a := cloneAppointment(&f.Appointments[i])
		a.ID = neg(a.ID)
		a.CustomerID = negPtr(a.CustomerID)
		a.VehicleID = negPtr(a.VehicleID)
		out.Appointments = append(out.Appointments, *a)
	}
	for i := range f.ServiceRecords {
		r := cloneServiceRecord(&f.ServiceRecords[i])
		r.ID = neg(r.ID)
		r.VehicleID = neg(r.VehicleID)
		r.MechanicID = negPtr(r.MechanicID)
		if r.Vehicle != nil {
			r.Vehicle.ID = neg(r.Vehicle.ID)
			r.Vehicle.CustomerID = neg(r.Vehicle.CustomerID)
		}
		if r.Mechanic != nil {
			r.Mechanic.ID = neg(r.Mechanic.ID)
		}
		for j := range r.Parts {
			r.Parts[j].ID = neg(r.Parts[j].ID)
			r.Parts[j].PartID = neg(r.Parts[j].PartID)
			if r.Parts[j].Part != nil {
				r.Parts[j].Part.ID = neg(r.Parts[j].Part.ID)
			}
		}
		out.ServiceRecords = append(out.ServiceRecords, *r)
	}
	for _, p := range f.Parts {
		p.ID = neg(p.ID)
		out.Parts = append(out.Parts, p)
	}
	return out
}

// DefaultFixtures returns the built-in demo dataset with appointment dates
// relative to the current time.
func DefaultFixtures() Fixtures {
	return defaultFixtures(time.Now())
}

func defaultFixtures(now time.Time) Fixtures {
	rajesh := domain.Customer{
		ID: 1, CustomerID: "CUST-001", FirstName: "Rajesh", LastName: "Kumar",
		Phone: "9876543210", Email: "rajesh.kumar@example.com", Address: "12 MG Road, Bengaluru",
		CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-72 * time.Hour),
		Vehicles: []domain.Vehicle{{
			ID: 1, RegNumber: "KA-01-AB-1234", Model: "Swift Dzire", Type: "Sedan",
			OwnerName: "Rajesh Kumar", OwnerPhone: "9876543210", OwnerAddress: "12 MG Road, Bengaluru",
			CustomerID: 1, CreatedAt: now.Add(-72 * time.Hour),
		}},
	}
	priya := domain.Customer{
		ID: 2, CustomerID: "CUST-002", FirstName: "Priya", LastName: "Sharma",
		Phone: "9123456780", Email: "priya.sharma@example.com", Address: "4 Marine Drive, Mumbai",
		CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour),
		Vehicles: []domain.Vehicle{{
			ID: 2, RegNumber: "MH-02-XY-9876", Model: "Honda City", Type: "Sedan",
			OwnerName: "Priya Sharma", OwnerPhone: "9123456780", OwnerAddress: "4 Marine Drive, Mumbai",
			CustomerID: 2, CreatedAt: now.Add(-48 * time.Hour),
		}},
	}

	customerOne, customerTwo := int64(1), int64(2)
	vehicleOne, vehicleTwo := int64(1), int64(2)
	mechanicID := int64(1)
	mechanic := domain.Mechanic{ID: 1, Name: "Suresh Patil", Phone: "9988776655", Specialization: "Engine"}
	oilFilter := domain.Part{ID: 1, PartNumber: "PRT-OF-100", Name: "Oil Filter", Price: 350, Quantity: 40}
	brakePads := domain.Part{ID: 2, PartNumber: "PRT-BP-220", Name: "Brake Pads", Price: 1800, Quantity: 12}

	return Fixtures{
		Customers: []domain.Customer{rajesh, priya},
		Vendors: []domain.Vendor{
			demoVendor(1, "VEN-001", "Autoparts India Pvt Ltd", "Spare Parts", 4.5, now.Add(-240*time.Hour),
				domain.PurchaseOrder{ID: 1, OrderNumber: "PO-2024-001", VendorID: 1, Status: "DELIVERED", TotalAmount: 45000, OrderDate: now.Add(-200 * time.Hour)},
				domain.PurchaseOrder{ID: 2, OrderNumber: "PO-2024-002", VendorID: 1, Status: "PENDING", TotalAmount: 12500, OrderDate: now.Add(-24 * time.Hour)},
			),
			demoVendor(2, "VEN-002", "Lubricants Co", "Oils & Fluids", 4.0, now.Add(-160*time.Hour),
				domain.PurchaseOrder{ID: 3, OrderNumber: "PO-2024-003", VendorID: 2, Status: "DELIVERED", TotalAmount: 8000, OrderDate: now.Add(-120 * time.Hour)},
			),
			demoVendor(3, "VEN-003", "Tyre World", "Tyres", 3.5, now.Add(-96*time.Hour),
				domain.PurchaseOrder{ID: 4, OrderNumber: "PO-2024-004", VendorID: 3, Status: "ORDERED", TotalAmount: 32000, OrderDate: now.Add(-12 * time.Hour)},
			),
		},
		Appointments: []domain.Appointment{
			{
				ID: 1, CustomerID: &customerOne, VehicleID: &vehicleOne, ServiceType: "General Service",
				Date: now.Add(24 * time.Hour), Status: domain.StatusConfirmed, Notes: "Regular checkup",
				CreatedAt: now.Add(-24 * time.Hour),
				Customer:  &domain.AppointmentCustomer{FirstName: "Rajesh", LastName: "Kumar", Phone: "9876543210"},
				Vehicle:   &domain.AppointmentVehicle{RegNumber: "KA-01-AB-1234", Model: "Swift Dzire"},
			},
			{
				ID: 2, CustomerID: &customerTwo, VehicleID: &vehicleTwo, ServiceType: "Oil Change",
				Date: now.Add(48 * time.Hour), Status: domain.StatusPending, Notes: "Synthetic oil preferred",
				CreatedAt: now.Add(-12 * time.Hour),
				Customer:  &domain.AppointmentCustomer{FirstName: "Priya", LastName: "Sharma", Phone: "9123456780"},
				Vehicle:   &domain.AppointmentVehicle{RegNumber: "MH-02-XY-9876", Model: "Honda City"},
			},
		},
		ServiceRecords: []domain.ServiceRecord{{
			ID: 1, VehicleID: 1, MechanicID: &mechanicID, Date: now.Add(-30 * 24 * time.Hour),
			ServiceType: "General Service", Description: "Oil and filter change, brake inspection",
			Status: "COMPLETED", Mileage: 25000, TotalCost: 2150,
			Vehicle:  &rajesh.Vehicles[0],
			Mechanic: &mechanic,
			Parts: []domain.ServiceRecordPart{
				{ID: 1, PartID: 1, Quantity: 1, Price: 350, Part: &oilFilter},
				{ID: 2, PartID: 2, Quantity: 1, Price: 1800, Part: &brakePads},
			},
		}},
		Parts: []domain.Part{oilFilter, brakePads},
	}
}

func demoVendor(id int64, vendorID, company, category string, rating float64, created time.Time, orders ...domain.PurchaseOrder) domain.Vendor {
	return domain.Vendor{
		ID: id, VendorID: vendorID, CompanyName: company, Phone: fmt.Sprintf("98000000%02d", id),
		City: "Bengaluru", State: "Karnataka", Category: category, Rating: rating,
		PaymentTerms: "Net 30", Status: domain.VendorActive,
		PurchaseOrders: orders, CreatedAt: created, UpdatedAt: created,
	}
}

// fixtureFile is the YAML layout accepted by LoadFixtures. Appointment and
// service dates are given as hour offsets from load time so a fixture file
// stays useful across days.
type fixtureFile struct {
	Customers []struct {
		ID         int64  `yaml:"id"`
		CustomerID string `yaml:"customer_id"`
		FirstName  string `yaml:"first_name"`
		LastName   string `yaml:"last_name"`
		Phone      string `yaml:"phone"`
		Email      string `yaml:"email"`
		Address    string `yaml:"address"`
		GSTIN      string `yaml:"gstin"`
		Vehicles   []struct {
			ID        int64  `yaml:"id"`
			RegNumber string `yaml:"reg_number"`
			Model     string `yaml:"model"`
			Type      string `yaml:"type"`
		} `yaml:"vehicles"`
	} `yaml:"customers"`
	Vendors []struct {
		ID             int64   `yaml:"id"`
		VendorID       string  `yaml:"vendor_id"`
		CompanyName    string  `yaml:"company_name"`
		Phone          string  `yaml:"phone"`
		Category       string  `yaml:"category"`
		Rating         float64 `yaml:"rating"`
		Status         string  `yaml:"status"`
		PurchaseOrders []struct {
			ID          int64   `yaml:"id"`
			OrderNumber string  `yaml:"order_number"`
			Status      string  `yaml:"status"`
			TotalAmount float64 `yaml:"total_amount"`
		} `yaml:"purchase_orders"`
	} `yaml:"vendors"`
	Appointments []struct {
		ID          int64  `yaml:"id"`
		CustomerID  int64  `yaml:"customer_id"`
		VehicleID   int64  `yaml:"vehicle_id"`
		ServiceType string `yaml:"service_type"`
		OffsetHours int    `yaml:"offset_hours"`
		Status      string `yaml:"status"`
		Notes       string `yaml:"notes"`
	} `yaml:"appointments"`
	Parts []struct {
		ID         int64   `yaml:"id"`
		PartNumber string  `yaml:"part_number"`
		Name       string  `yaml:"name"`
		Price      float64 `yaml:"price"`
		Quantity   int     `yaml:"quantity"`
	} `yaml:"parts"`
}

// LoadFixtures reads a fallback dataset from a YAML file
func LoadFixtures(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return parseFixtures(data, time.Now())
}

func parseFixtures(data []byte, now time.Time) (Fixtures, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Fixtures{}, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	var f Fixtures
	customers := make(map[int64]domain.Customer)
	vehicles := make(map[int64]domain.Vehicle)
	for _, fc := range file.Customers {
		c := domain.Customer{
			ID: fc.ID, CustomerID: fc.CustomerID, FirstName: fc.FirstName, LastName: fc.LastName,
			Phone: fc.Phone, Email: fc.Email, Address: fc.Address, GSTIN: fc.GSTIN,
			CreatedAt: now, UpdatedAt: now, Vehicles: []domain.Vehicle{},
		}
		for _, fv := range fc.Vehicles {
			v := domain.Vehicle{
				ID: fv.ID, RegNumber: fv.RegNumber, Model: fv.Model, Type: fv.Type,
				OwnerName: c.FullName(), OwnerPhone: c.Phone, OwnerAddress: c.Address, OwnerGSTIN: c.GSTIN,
				CustomerID: c.ID, CreatedAt: now,
			}
			c.Vehicles = append(c.Vehicles, v)
			vehicles[v.ID] = v
		}
		customers[c.ID] = c
		f.Customers = append(f.Customers, c)
	}

	for _, fv := range file.Vendors {
		status := domain.VendorStatus(fv.Status)
		if status == "" {
			status = domain.VendorActive
		}
		v := domain.Vendor{
			ID: fv.ID, VendorID: fv.VendorID, CompanyName: fv.CompanyName, Phone: fv.Phone,
			Category: fv.Category, Rating: fv.Rating, Status: status,
			PurchaseOrders: []domain.PurchaseOrder{}, CreatedAt: now, UpdatedAt: now,
		}
		for _, po := range fv.PurchaseOrders {
			v.PurchaseOrders = append(v.PurchaseOrders, domain.PurchaseOrder{
				ID: po.ID, OrderNumber: po.OrderNumber, VendorID: v.ID,
				Status: po.Status, TotalAmount: po.TotalAmount, OrderDate: now,
			})
		}
		f.Vendors = append(f.Vendors, v)
	}

	for _, fa := range file.Appointments {
		status, err := domain.ParseAppointmentStatus(fa.Status)
		if err != nil {
			return Fixtures{}, fmt.Errorf("appointment %d: %w", fa.ID, err)
		}
		a := domain.Appointment{
			ID: fa.ID, ServiceType: fa.ServiceType, Status: status, Notes: fa.Notes,
			Date: now.Add(time.Duration(fa.OffsetHours) * time.Hour), CreatedAt: now,
		}
		if c, ok := customers[fa.CustomerID]; ok {
			id := c.ID
			a.CustomerID = &id
			a.Customer = &domain.AppointmentCustomer{FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone}
		}
		if v, ok := vehicles[fa.VehicleID]; ok {
			id := v.ID
			a.VehicleID = &id
			a.Vehicle = &domain.AppointmentVehicle{RegNumber: v.RegNumber, Model: v.Model}
		}
		f.Appointments = append(f.Appointments, a)
	}

	for _, fp := range file.Parts {
		f.Parts = append(f.Parts, domain.Part{
			ID: fp.ID, PartNumber: fp.PartNumber, Name: fp.Name, Price: fp.Price, Quantity: fp.Quantity,
		})
	}
	return f, nil
}
