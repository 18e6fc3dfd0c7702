package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-orders/models"
)

// ErrInvalidOrder marks a request rejected before any transaction started.
var ErrInvalidOrder = errors.New("invalid order request")

// ProductNotFoundError aborts a submission that references an unknown product.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with ID %d not found.", e.ProductID)
}

// StockConflictError carries one diagnostic per ingredient that could not
// cover the submission.
type StockConflictError struct {
	Diagnostics []models.StockDiagnostic
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for %d ingredient(s)", len(e.Diagnostics))
}

// Outcome is the tagged result of a submission.
type Outcome string

const (
	OutcomeCreated         Outcome = "created"
	OutcomeInvalid         Outcome = "invalid"
	OutcomeProductNotFound Outcome = "product_not_found"
	OutcomeConflict        Outcome = "conflict"
	OutcomeFault           Outcome = "fault"
)

// Classify maps the error returned by SubmitOrder to its outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeCreated
	}

	var notFound *ProductNotFoundError
	var conflict *StockConflictError
	switch {
	case errors.Is(err, ErrInvalidOrder):
		return OutcomeInvalid
	case errors.As(err, &notFound):
		return OutcomeProductNotFound
	case errors.As(err, &conflict):
		return OutcomeConflict
	default:
		return OutcomeFault
	}
}
