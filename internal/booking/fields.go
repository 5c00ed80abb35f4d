package booking

import (
	"fmt"

	"bkcnorm/internal/domain"
)

// Compulsory field names as produced by the extraction step.
const (
	ShipperName       = "Shipper Name"
	ShipperAddress    = "Shipper Address"
	HBLNo             = "HBL_No"
	CarrierName       = "Carrier Name"
	BookingNumber     = "Booking Number"
	DepartureDate     = "Departure Date"
	VesselName        = "Vessel Name"
	VoyageNo          = "Voyage No"
	CountryCode       = "Country Code"
	PortCode          = "Port Code"
	PortOfDischarge   = "Port of Discharge"
	LoadingTerminal   = "Loading Terminal"
	GrossWeight       = "Gross Weight"
	GrossWeightUnit   = "Gross Weight Unit"
	ContainerNumber   = "Container number"
	ContainerSize     = "Container Size"
	NumberOfPackages  = "Number of Packages"
	ConsigneeName     = "ConsigneeName"
	ShipmentMode      = "Container Shipment Mode"
	Incoterms         = "Incoterms"
	ContainerQuantity = "Container Quantity"
	ContainerQtyUnit  = "Container Quantity Unit"
	OuterPackage      = "Outer Package"
	OuterPackageUnit  = "Outer Package Unit"
)

// ContainerSizeType is derived from the shipment mode and container size.
const ContainerSizeType = "ContainerSizeType"

// Schema names accepted in configuration.
const (
	SchemaBasic    = "basic"
	SchemaExtended = "extended"
)

// BasicSchema is the compulsory field set of the basic booking confirmation.
var BasicSchema = []string{
	ShipperName, ShipperAddress, HBLNo, CarrierName, BookingNumber,
	DepartureDate, VesselName, VoyageNo, CountryCode, PortCode,
	PortOfDischarge, LoadingTerminal, GrossWeight, GrossWeightUnit,
	ContainerNumber, ContainerSize, NumberOfPackages,
}

// ExtendedSchema adds consignee, shipment mode, incoterms and package fields
// to BasicSchema.
var ExtendedSchema = []string{
	ShipperName, ShipperAddress, HBLNo, CarrierName, BookingNumber,
	DepartureDate, VesselName, VoyageNo, CountryCode, PortCode,
	PortOfDischarge, LoadingTerminal, GrossWeight, GrossWeightUnit,
	ContainerNumber, ContainerSize, NumberOfPackages,
	ConsigneeName, ShipmentMode, Incoterms, ContainerQuantity,
	ContainerQtyUnit, OuterPackage, OuterPackageUnit,
}

// UnitFields holds the fields whose values are units of measure.
var UnitFields = []string{GrossWeightUnit, ContainerQtyUnit, OuterPackageUnit}

// SchemaFields returns a copy of the compulsory field list for the named schema.
func SchemaFields(name string) ([]string, error) {
	var src []string
	switch name {
	case SchemaBasic:
		src = BasicSchema
	case SchemaExtended, "":
		src = ExtendedSchema
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSchema, name)
	}
	out := make([]string, len(src))
	copy(out, src)
	return out, nil
}
