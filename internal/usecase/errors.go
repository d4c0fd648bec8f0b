package usecase

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// IsAlreadyConverted reports whether err is the conversion idempotency
// rejection, so handlers can answer 400 instead of 500.
func IsAlreadyConverted(err error) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == "ALREADY_CONVERTED"
}
