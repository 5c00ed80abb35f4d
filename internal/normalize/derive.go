package normalize

import (
	"regexp"
	"strings"
)

// Shipment load types.
const (
	LoadFCL = "FCL"
	LoadLCL = "LCL"
)

// shipmentModes maps a receipt/delivery term pair to a load type.
// CY/CFS and CFS/CY are kept exactly as the carriers' sheets define them.
var shipmentModes = map[string]string{
	"CY/CY":   LoadFCL,
	"CFS/CFS": LoadLCL,
	"CY/CFS":  LoadLCL,
	"CFS/CY":  LoadFCL,
}

var sizeDigits = regexp.MustCompile(`\d+`)

// InferShipmentMode maps a shipment mode such as "cy/cy " to its load type.
// The second result is false when the mode is not in the table.
func InferShipmentMode(mode string) (string, bool) {
	load, ok := shipmentModes[strings.ToUpper(strings.TrimSpace(mode))]
	return load, ok
}

// ContainerSizeDigits returns the first run of digits in a container size
// such as "40RK" or "20' GP", or "" when there is none.
func ContainerSizeDigits(size string) string {
	return sizeDigits.FindString(size)
}

// DeriveContainerSizeType joins the upper-cased mode and the numeric size,
// e.g. "FCL" + "40RK" -> "FCL40". It reports false when either part is empty.
func DeriveContainerSizeType(mode, size string) (string, bool) {
	m := strings.ToUpper(strings.TrimSpace(mode))
	digits := ContainerSizeDigits(size)
	if m == "" || digits == "" {
		return "", false
	}
	return m + digits, true
}
