// Package sheets defines the port for mirroring payment records to an
// external spreadsheet.
package sheets

import (
	"context"

	"mensalidades/internal/core"
)

// PaymentMirror receives an append-only copy of recorded payments.
type PaymentMirror interface {
	// AppendPayment adds one payment row and returns a backend reference.
	AppendPayment(ctx context.Context, p core.Payment) (rowRef string, err error)
}
