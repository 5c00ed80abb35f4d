package normalize

import "bkcnorm/internal/booking"

// MissingFields returns the names in fields that rec lacks under every casing.
func MissingFields(rec *booking.Record, fields []string) []string {
	var missing []string
	for _, f := range fields {
		if !rec.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// CompleteFields inserts an empty string for every name in fields that rec
// lacks under every casing. Existing values are never overwritten, even when
// empty or stored under a different casing. It mutates rec and returns it.
func CompleteFields(rec *booking.Record, fields []string) *booking.Record {
	for _, f := range MissingFields(rec, fields) {
		rec.Put(f, "")
	}
	return rec
}
