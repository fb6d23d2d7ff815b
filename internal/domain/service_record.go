package domain

import "time"

// Mechanic performs service work.
type Mechanic struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Part is an inventory item.
type Part struct {
	ID         int64   `json:"id"`
	PartNumber string  `json:"partNumber"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// ServiceRecordPart joins a service record to a part it consumed.
type ServiceRecordPart struct {
	ID       int64   `json:"id"`
	PartID   int64   `json:"partId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Part     *Part   `json:"part,omitempty"`
}

// ServiceRecord is completed or ongoing work on a vehicle.
type ServiceRecord struct {
	ID          int64               `json:"id"`
	VehicleID   int64               `json:"vehicleId"`
	MechanicID  *int64              `json:"mechanicId"`
	Date        time.Time           `json:"date"`
	ServiceType string              `json:"serviceType"`
	Description string              `json:"description,omitempty"`
	Status      string              `json:"status"`
	Mileage     int                 `json:"mileage,omitempty"`
	TotalCost   float64             `json:"totalCost"`
	Vehicle     *Vehicle            `json:"vehicle,omitempty"`
	Mechanic    *Mechanic           `json:"mechanic,omitempty"`
	Parts       []ServiceRecordPart `json:"parts"`
}

// DashboardStats are the headline counters of the dashboard.
type DashboardStats struct {
	Customers           int `json:"customers"`
	Vehicles            int `json:"vehicles"`
	PendingAppointments int `json:"pendingAppointments"`
	Vendors             int `json:"vendors"`
	Parts               int `json:"parts"`
	ServiceRecords      int `json:"serviceRecords"`
}
