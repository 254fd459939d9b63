package apperrors

import "net/http"

type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeInvalidParticipants Code = "INVALID_PARTICIPANTS"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeTransportFailure    Code = "TRANSPORT_FAILURE"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus maps a code onto the status the API responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeInvalidParticipants:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeTransportFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromHTTPStatus is the inverse used by API clients.
func FromHTTPStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest:
		return CodeInvalidArgument
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusPaymentRequired:
		return CodeUnauthenticated
	case status >= 500:
		return CodeTransportFailure
	default:
		return CodeUnknown
	}
}
