package offline

import (
	"context"

	"github.com/yeremiapane/restaurant-orders/models"
)

// Outcome is what the server made of one submission.
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeConflict     Outcome = "conflict"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeRejected     Outcome = "rejected"
)

// SubmitResult is the tagged result of a submission. Order is set when
// accepted, Diagnostics on conflict and Err for network errors and
// rejections.
type SubmitResult struct {
	Outcome     Outcome
	Order       *models.Order
	Diagnostics []models.StockDiagnostic
	Err         error
}

type Submitter interface {
	Submit(ctx context.Context, items []models.LineItem) SubmitResult
}

// WithoutConflicting drops the lines whose product appears in any
// diagnostic, leaving the part of the order that can still be served.
func WithoutConflicting(items []models.LineItem, diagnostics []models.StockDiagnostic) []models.LineItem {
	blocked := make(map[uint]struct{})
	for _, d := range diagnostics {
		for _, p := range d.AffectedProducts {
			blocked[p.ID] = struct{}{}
		}
	}

	kept := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if _, ok := blocked[item.ProductID]; !ok {
			kept = append(kept, item)
		}
	}
	return kept
}
