package types

type ErrorKind string

const (
	ERR_VALIDATION           ErrorKind = "validation"
	ERR_INVALID_TRANSITION   ErrorKind = "invalid_transition"
	ERR_NOT_ELIGIBLE         ErrorKind = "not_eligible"
	ERR_ALREADY_RESOLVED     ErrorKind = "already_resolved"
	ERR_DUPLICATE_ASSIGNMENT ErrorKind = "duplicate_assignment"
	ERR_CONFLICT             ErrorKind = "conflict"
	ERR_FORBIDDEN            ErrorKind = "forbidden"
	ERR_NOT_FOUND            ErrorKind = "not_found"
)

// DomainError carries the taxonomy kind alongside the message so handlers
// can map it to a status code without string matching.
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func ErrValidation(message string) *DomainError {
	return NewDomainError(ERR_VALIDATION, message)
}

func ErrInvalidTransition(message string) *DomainError {
	return NewDomainError(ERR_INVALID_TRANSITION, message)
}

func ErrNotEligible(message string) *DomainError {
	return NewDomainError(ERR_NOT_ELIGIBLE, message)
}

func ErrAlreadyResolved(message string) *DomainError {
	return NewDomainError(ERR_ALREADY_RESOLVED, message)
}

func ErrDuplicateAssignment(message string) *DomainError {
	return NewDomainError(ERR_DUPLICATE_ASSIGNMENT, message)
}

func ErrConflict(message string) *DomainError {
	return NewDomainError(ERR_CONFLICT, message)
}

func ErrForbidden(message string) *DomainError {
	return NewDomainError(ERR_FORBIDDEN, message)
}

func ErrNotFound(message string) *DomainError {
	return NewDomainError(ERR_NOT_FOUND, message)
}
