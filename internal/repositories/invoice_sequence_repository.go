package repositories

import (
	"context"
	"fmt"
)

// InvoiceSequenceRepository issues gap-free per-prefix invoice numbers.
// Each prefix (catch-up, deposit, scheduled run, admin batch, manual) has
// its own counter row so numbers stay dense within a series.
type InvoiceSequenceRepository interface {
	WithTx(tx Tx) InvoiceSequenceRepository

	// Next reserves and returns the next number for prefix, formatted as
	// e.g. "INV-AUTO-00042".
	Next(ctx context.Context, prefix string) (string, error)
}

type invoiceSequenceRepo struct {
	db DB
}

func NewInvoiceSequenceRepository(db DB) InvoiceSequenceRepository {
	return &invoiceSequenceRepo{db: db}
}

func (r *invoiceSequenceRepo) WithTx(tx Tx) InvoiceSequenceRepository {
	return &invoiceSequenceRepo{db: tx}
}

func (r *invoiceSequenceRepo) Next(ctx context.Context, prefix string) (string, error) {
	// Upsert-and-increment in one statement; the row lock it takes
	// serializes concurrent callers on the same prefix.
	var n int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoice_sequences (prefix, last_value)
		VALUES ($1, 1)
		ON CONFLICT (prefix)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`, prefix).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, n), nil
}
