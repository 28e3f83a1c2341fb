package responsecache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Document is the arbitrary structured result of a computation. The cache
// treats it as opaque: it is serialized on upsert, stored as a blob, and
// deserialized on read, with no inspection in between. Nested maps decode
// as map[string]any and lists as []any.
type Document map[string]any

// ErrorDetails is the structured error context attached to a failed
// response. It is stored alongside the payload but never returned by Get;
// only the report queries surface it.
type ErrorDetails struct {
	Message        string   `json:"error" msgpack:"error"`
	CauseException string   `json:"cause_exception" msgpack:"cause_exception"`
	CauseMessage   string   `json:"cause_message" msgpack:"cause_message"`
	CauseTraceback []string `json:"cause_traceback" msgpack:"cause_traceback"`
}

func encodeDocument(doc Document) ([]byte, error) {
	if doc == nil {
		return nil, nil
	}
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("responsecache: encode payload: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("responsecache: decode payload: %w", err)
	}
	return doc, nil
}

func encodeDetails(details *ErrorDetails) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	data, err := msgpack.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("responsecache: encode details: %w", err)
	}
	return data, nil
}

func decodeDetails(data []byte) (*ErrorDetails, error) {
	if len(data) == 0 {
		return nil, nil
	}
	details := new(ErrorDetails)
	if err := msgpack.Unmarshal(data, details); err != nil {
		return nil, fmt.Errorf("responsecache: decode details: %w", err)
	}
	return details, nil
}

// isSuccess classifies an HTTP status code: 2xx is success, everything
// else is failure.
func isSuccess(httpStatus int) bool {
	return httpStatus >= 200 && httpStatus < 300
}
