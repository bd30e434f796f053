package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldChildID   = "child_id"
	FieldRequestID = "request_id"
	FieldAmount    = "amount"
	FieldKey       = "key"
	FieldError     = "error"
)

// Component names.
const (
	ComponentApp        = "app"
	ComponentStorage    = "storage"
	ComponentAllowance  = "allowance"
	ComponentBank       = "bank"
	ComponentWithdrawal = "withdrawal"
	ComponentSession    = "session"
)
