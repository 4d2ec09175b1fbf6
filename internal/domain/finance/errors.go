package finance

import "errors"

var (
	// ErrContractViolation is returned when input that normalization must have
	// rejected (negative or non-finite hours) reaches the rollup engine
	ErrContractViolation = errors.New("rollup contract violation")
)
