package responsecache

// Report is one entry of the paginated report: the key fields, the HTTP
// status, and, for failures, the error object assembled from the stored
// error code and details.
type Report[K Key] struct {
	Key        K            `json:"key"`
	HTTPStatus int          `json:"http_status"`
	Error      *ReportError `json:"error,omitempty"`
}

// ReportError is the error object attached to failing report entries.
type ReportError struct {
	Message        string   `json:"message"`
	ErrorCode      string   `json:"error_code"`
	CauseException string   `json:"cause_exception,omitempty"`
	CauseMessage   string   `json:"cause_message,omitempty"`
	CauseTraceback []string `json:"cause_traceback,omitempty"`
}

// Page is one page of the report plus the token to resume after it. An
// empty NextCursor means the end of the data was reached.
type Page[K Key] struct {
	Reports    []Report[K] `json:"cache_reports"`
	NextCursor string      `json:"next_cursor"`
}

// newReportError builds the report error object. The message comes from
// the stored details; when details are absent it falls back to the error
// code so failing entries always carry a message.
func newReportError(errorCode string, details *ErrorDetails) *ReportError {
	re := &ReportError{ErrorCode: errorCode}
	if details != nil {
		re.Message = details.Message
		re.CauseException = details.CauseException
		re.CauseMessage = details.CauseMessage
		re.CauseTraceback = details.CauseTraceback
	}
	if re.Message == "" {
		re.Message = errorCode
	}
	return re
}
