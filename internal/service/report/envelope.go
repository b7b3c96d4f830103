package report

import "net/http"

// Status marks an envelope as success or failure.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Meta carries pagination details for list responses.
type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

// Envelope is the uniform response wrapper every operation returns. Operations
// never return a Go error to the transport collaborator; faults are folded
// into a failure envelope here.
type Envelope struct {
	Status     Status `json:"status"`
	HTTPStatus int    `json:"httpStatus"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Meta       *Meta  `json:"meta,omitempty"`
}

type failKind int

const (
	failNotFound failKind = iota
	failValidation
	failUnavailable
)

func (k failKind) httpStatus() int {
	switch k {
	case failNotFound:
		return http.StatusNotFound
	case failValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func ok(message string, data any, meta *Meta) Envelope {
	return Envelope{
		Status:     StatusSuccess,
		HTTPStatus: http.StatusOK,
		Message:    message,
		Data:       data,
		Meta:       meta,
	}
}

func fail(kind failKind, message string) Envelope {
	return Envelope{
		Status:     StatusFailure,
		HTTPStatus: kind.httpStatus(),
		Message:    message,
		Data:       []any{},
	}
}
