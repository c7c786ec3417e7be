package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

const transferColumns = `id, direction, status, COALESCE(back_reference, ''), total_amount, version,
	created_at, updated_at, submitted_at, cancelled_at`

// StockTransferRepository implements usecase.StockTransferRepository.
type StockTransferRepository struct {
	q Querier
}

// NewStockTransferRepository creates a new StockTransferRepository.
func NewStockTransferRepository(q Querier) *StockTransferRepository {
	return &StockTransferRepository{q: q}
}

// Create inserts the transfer header and its items.
func (r *StockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.StockTransfer) error {
	q := on(tx, r.q)

	_, err := q.Exec(ctx, `
		INSERT INTO stock_transfers (id, direction, status, back_reference, total_amount, version,
			created_at, updated_at, submitted_at, cancelled_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`,
		transfer.ID, string(transfer.Direction), string(transfer.Status), transfer.BackReference,
		transfer.TotalAmount, transfer.Version, transfer.CreatedAt, transfer.UpdatedAt,
		transfer.SubmittedAt, transfer.CancelledAt,
	)
	if err != nil {
		return err
	}

	return insertItems(ctx, q, transfer)
}

// GetByID retrieves a transfer with its items.
func (r *StockTransferRepository) GetByID(ctx context.Context, id string) (*domain.StockTransfer, error) {
	return r.get(ctx, r.q, id, "")
}

// GetByIDForUpdate retrieves a transfer and locks its header row.
func (r *StockTransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.StockTransfer, error) {
	return r.get(ctx, on(tx, r.q), id, " FOR UPDATE")
}

func (r *StockTransferRepository) get(ctx context.Context, q Querier, id, lock string) (*domain.StockTransfer, error) {
	transfer, err := scanTransfer(q.QueryRow(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStockTransferNotFound
		}
		return nil, err
	}

	items, err := loadItems(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	transfer.Items = items[id]
	return transfer, nil
}

// Update rewrites the header and items and bumps the version.
func (r *StockTransferRepository) Update(ctx context.Context, tx usecase.Transaction, transfer *domain.StockTransfer) error {
	q := on(tx, r.q)

	tag, err := q.Exec(ctx, `
		UPDATE stock_transfers
		SET status = $2, total_amount = $3, updated_at = $4, submitted_at = $5, cancelled_at = $6,
			version = version + 1
		WHERE id = $1`,
		transfer.ID, string(transfer.Status), transfer.TotalAmount, transfer.UpdatedAt,
		transfer.SubmittedAt, transfer.CancelledAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockTransferNotFound
	}

	if _, err := q.Exec(ctx, `DELETE FROM stock_transfer_items WHERE transfer_id = $1`, transfer.ID); err != nil {
		return err
	}
	return insertItems(ctx, q, transfer)
}

// Delete removes a transfer; its items cascade.
func (r *StockTransferRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := on(tx, r.q).Exec(ctx, `DELETE FROM stock_transfers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockTransferNotFound
	}
	return nil
}

// ListByBackReference lists the transfers referencing an invoice, oldest first.
func (r *StockTransferRepository) ListByBackReference(ctx context.Context, invoiceID string, limit, offset int) ([]*domain.StockTransfer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+transferColumns+` FROM stock_transfers
		WHERE back_reference = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`, invoiceID, limit, offset)
	if err != nil {
		return nil, err
	}

	var (
		transfers []*domain.StockTransfer
		ids       []string
	)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		transfers = append(transfers, t)
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return transfers, nil
	}

	items, err := loadItems(ctx, r.q, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range transfers {
		t.Items = items[t.ID]
	}
	return transfers, nil
}

func insertItems(ctx context.Context, q Querier, transfer *domain.StockTransfer) error {
	for i, item := range transfer.Items {
		_, err := q.Exec(ctx, `
			INSERT INTO stock_transfer_items (transfer_id, position, item, rate, quantity, location)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			transfer.ID, i, item.Item, item.Rate, item.Quantity, item.Location,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func loadItems(ctx context.Context, q Querier, ids []string) (map[string][]domain.StockTransferItem, error) {
	rows, err := q.Query(ctx, `
		SELECT transfer_id, item, rate, quantity, location
		FROM stock_transfer_items
		WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, position`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.StockTransferItem, len(ids))
	for rows.Next() {
		var (
			transferID string
			item       domain.StockTransferItem
		)
		if err := rows.Scan(&transferID, &item.Item, &item.Rate, &item.Quantity, &item.Location); err != nil {
			return nil, err
		}
		out[transferID] = append(out[transferID], item)
	}
	return out, rows.Err()
}

func scanTransfer(row pgx.Row) (*domain.StockTransfer, error) {
	var (
		t                 domain.StockTransfer
		direction, status string
	)
	err := row.Scan(&t.ID, &direction, &status, &t.BackReference, &t.TotalAmount, &t.Version,
		&t.CreatedAt, &t.UpdatedAt, &t.SubmittedAt, &t.CancelledAt)
	if err != nil {
		return nil, err
	}
	t.Direction = domain.Direction(direction)
	t.Status = domain.TransferStatus(status)
	return &t, nil
}
