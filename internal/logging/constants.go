package logging

// Standardized field names for structured logging.
// These constants ensure consistency across the application's log output,
// making logs easier to parse, filter, and analyze.
const (
	FieldFile          = "file_path"
	FieldEntity        = "entity"
	FieldReservationID = "reservation_id"
	FieldCurrency      = "currency"
	FieldDate          = "date"
	FieldRate          = "rate"
	FieldProvenance    = "provenance"
	FieldReason        = "reason"
	FieldCount         = "count"
	FieldSkipped       = "skipped"
	FieldOutputFile    = "output_file"
)
