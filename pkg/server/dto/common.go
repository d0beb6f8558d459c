package dto

import "errors"

// Field limits shared across request types to prevent abuse.
const (
	MaxQueryLength        = 8192
	MaxEntityNameLength   = 1024
	MaxContextLength      = 64 * 1024
	MaxEntitiesPerBatch   = 10000
	MaxDocumentsPerBatch  = 1000
	MaxSnapshotNameLength = 256
)

// Validation errors
var (
	ErrEmptyQuery       = errors.New("query cannot be empty")
	ErrQueryTooLong     = errors.New("query exceeds maximum length (8192)")
	ErrEmptyEntities    = errors.New("entities cannot be empty")
	ErrTooManyEntities  = errors.New("entities count exceeds maximum (10000)")
	ErrEmptyEntity      = errors.New("entity cannot be empty")
	ErrEmptyDocuments   = errors.New("documents cannot be empty")
	ErrTooManyDocuments = errors.New("documents count exceeds maximum (1000)")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNameTooLong      = errors.New("name exceeds maximum length (256)")
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
