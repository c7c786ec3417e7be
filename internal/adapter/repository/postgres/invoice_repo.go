package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository. Lines keep the
// order they were created in through their position column.
type InvoiceRepository struct {
	q Querier
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(q Querier) *InvoiceRepository {
	return &InvoiceRepository{q: q}
}

// Create inserts the invoice header and its lines.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	q := on(tx, r.q)

	_, err := q.Exec(ctx, `
		INSERT INTO invoices (id, kind, stock_not_transferred, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		invoice.ID, string(invoice.Kind), invoice.StockNotTransferred, invoice.Version,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for i, line := range invoice.Lines {
		_, err := q.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, position, item, quantity, stock_not_transferred)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ID, invoice.ID, i, line.Item, line.Quantity, line.StockNotTransferred,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves an invoice with its lines.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.get(ctx, r.q, id, "")
}

// GetByIDForUpdate retrieves an invoice and locks its header row.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	return r.get(ctx, on(tx, r.q), id, " FOR UPDATE")
}

func (r *InvoiceRepository) get(ctx context.Context, q Querier, id, lock string) (*domain.Invoice, error) {
	var (
		inv  domain.Invoice
		kind string
	)
	err := q.QueryRow(ctx, `
		SELECT id, kind, stock_not_transferred, version, created_at, updated_at
		FROM invoices WHERE id = $1`+lock, id,
	).Scan(&inv.ID, &kind, &inv.StockNotTransferred, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	inv.Kind = domain.InvoiceKind(kind)

	rows, err := q.Query(ctx, `
		SELECT id, item, quantity, stock_not_transferred
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.InvoiceLine
		if err := rows.Scan(&line.ID, &line.Item, &line.Quantity, &line.StockNotTransferred); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateLineStockNotTransferred writes one line's not-transferred quantity.
func (r *InvoiceRepository) UpdateLineStockNotTransferred(ctx context.Context, tx usecase.Transaction, lineID string, value decimal.Decimal) error {
	tag, err := on(tx, r.q).Exec(ctx,
		`UPDATE invoice_lines SET stock_not_transferred = $2 WHERE id = $1`, lineID, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// UpdateStockNotTransferred writes the aggregate when the stored version
// still matches and bumps it.
func (r *InvoiceRepository) UpdateStockNotTransferred(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, version int64, updatedAt time.Time) error {
	tag, err := on(tx, r.q).Exec(ctx, `
		UPDATE invoices
		SET stock_not_transferred = $2, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $3`,
		id, total, version, updatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceVersionStale
	}
	return nil
}
