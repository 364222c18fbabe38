package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID        = "user_id"
	FieldUsername      = "username"
	FieldCategoryID    = "category_id"
	FieldCategoryName  = "category_name"
	FieldCategoryType  = "category_type"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldFilter        = "filter"
	FieldDialect       = "dialect"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentStorage   = "storage"
	ComponentService   = "service"
	ComponentReports   = "reports"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentRecompute = "recompute"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpLogin     = "login"
	OpRecompute = "recompute"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
