package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Chat
	FieldUserID    = "user_id"
	FieldRoomID    = "room_id"
	FieldSessionID = "session_id"
	FieldChannel   = "channel"
	FieldMsgTime   = "msg_time"

	// Service
	FieldService = "service"
)
