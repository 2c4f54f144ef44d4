package log

// Shared field names so log lines stay greppable across components.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldUserID     = "user_id"
)

// Standard component names.
const (
	ComponentAPI     = "api"
	ComponentWorker  = "worker"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentSweep   = "sweep"
)
