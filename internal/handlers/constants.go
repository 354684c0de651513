package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgReportNotFound     = "Report not found"
	ErrMsgListNotFound       = "List not found"
)
