package models

// Booking is a single bookings row. Bookings carry opaque extra columns that
// must pass through to clients unchanged, so rows are keyed by column name
// instead of being scanned into a fixed struct.
type Booking map[string]interface{}
