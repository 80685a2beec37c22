package booking

// VehicleType represents the supported vehicle classes for pricing.
type VehicleType string

const (
	VehicleTypeSedan VehicleType = "sedan"
	VehicleTypeSUV   VehicleType = "suv"
	VehicleTypeTruck VehicleType = "truck"
	VehicleTypeCoupe VehicleType = "coupe"
)

// SupportedVehicleTypes lists every vehicle type a catalog price table
// must cover, in display order.
var SupportedVehicleTypes = []VehicleType{
	VehicleTypeSedan,
	VehicleTypeSUV,
	VehicleTypeTruck,
	VehicleTypeCoupe,
}

// IsValid returns true if the vehicle type is recognized.
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleTypeSedan, VehicleTypeSUV, VehicleTypeTruck, VehicleTypeCoupe:
		return true
	}
	return false
}

// String returns the string representation of the vehicle type.
func (v VehicleType) String() string {
	return string(v)
}

// CustomerSnapshot is an immutable value object capturing the customer
// details at submission time.
type CustomerSnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// VehicleSnapshot is an immutable value object capturing the vehicle
// details at submission time.
type VehicleSnapshot struct {
	VehicleType VehicleType `json:"vehicle_type"`
	Make        string      `json:"make"`
	Model       string      `json:"model"`
	Year        int         `json:"year"`
}
