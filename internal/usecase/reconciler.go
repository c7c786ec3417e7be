package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/infrastructure/metrics"
)

// BackReferenceReconciler keeps the not-transferred quantities of an invoice
// in step with the stock transfers that reference it.
type BackReferenceReconciler struct {
	invoiceRepo InvoiceRepository
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewBackReferenceReconciler creates a new BackReferenceReconciler.
func NewBackReferenceReconciler(invoiceRepo InvoiceRepository, logger zerolog.Logger, m *metrics.Metrics) *BackReferenceReconciler {
	return &BackReferenceReconciler{
		invoiceRepo: invoiceRepo,
		logger:      logger.With().Str("component", "reconciler").Logger(),
		metrics:     m,
	}
}

// Reconcile applies the transfer to its invoice inside tx. Submitted
// transfers consume not-transferred quantity, cancelled ones give it back.
// It returns a nil invoice when the transfer is in neither status or has no
// back reference. The caller must hold the invoice lock.
func (r *BackReferenceReconciler) Reconcile(ctx context.Context, tx Transaction, transfer *domain.StockTransfer) (*domain.Invoice, error) {
	var mode domain.ReconcileMode
	switch transfer.Status {
	case domain.TransferStatusSubmitted:
		mode = domain.ReconcileSubmit
	case domain.TransferStatusCancelled:
		mode = domain.ReconcileCancel
	default:
		return nil, nil
	}
	if !transfer.HasBackReference() {
		return nil, nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "BackReferenceReconciler.Reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("transfer.id", transfer.ID),
		attribute.String("invoice.id", transfer.BackReference),
		attribute.String("reconcile.mode", mode.String()),
	)

	invoice, err := r.invoiceRepo.GetByIDForUpdate(ctx, tx, transfer.BackReference)
	if err != nil {
		return nil, err
	}
	if invoice.Kind != transfer.Direction.InvoiceKind() {
		return nil, fmt.Errorf("%w: %s transfer references %s invoice %s",
			domain.ErrInvalidInvoiceKind, transfer.Direction, invoice.Kind, invoice.ID)
	}

	result := domain.ReconcileLines(domain.BuildTransferMap(transfer), invoice.Lines, mode)

	for _, i := range result.Changed {
		before, after := invoice.Lines[i].StockNotTransferred, result.Lines[i].StockNotTransferred
		if before.Valid && before.Decimal.Equal(after.Decimal) {
			continue
		}
		if err := r.invoiceRepo.UpdateLineStockNotTransferred(ctx, tx, result.Lines[i].ID, after.Decimal); err != nil {
			return nil, fmt.Errorf("update invoice line %s: %w", result.Lines[i].ID, err)
		}
	}

	unmapped := domain.UnmappedLines(transfer)
	for _, i := range unmapped {
		item := transfer.Items[i]
		ev := r.logger.Warn().
			Str("transfer_id", transfer.ID).
			Str("invoice_id", invoice.ID).
			Int("transfer_line", i).
			Str("item", item.Item).
			Str("mode", mode.String())
		if item.Quantity.Valid {
			ev = ev.Str("quantity", item.Quantity.Decimal.String())
		}
		ev.Msg("transfer line has no item or quantity, skipped")
	}

	for _, i := range result.Skipped {
		r.logger.Debug().
			Str("transfer_id", transfer.ID).
			Str("invoice_id", invoice.ID).
			Str("line_id", result.Lines[i].ID).
			Str("item", result.Lines[i].Item).
			Msg("invoice line not moved by transfer")
	}

	invoice.Lines = result.Lines
	total := invoice.RecomputeStockNotTransferred()
	now := time.Now().UTC()
	if err := r.invoiceRepo.UpdateStockNotTransferred(ctx, tx, invoice.ID, total, invoice.Version, now); err != nil {
		return nil, err
	}
	invoice.Version++
	invoice.UpdatedAt = now

	if r.metrics != nil {
		r.metrics.ReconciledLines.WithLabelValues(mode.String()).Add(float64(len(result.Changed)))
		r.metrics.SkippedLines.WithLabelValues(mode.String()).Add(float64(len(unmapped)))
	}

	r.logger.Debug().
		Str("transfer_id", transfer.ID).
		Str("invoice_id", invoice.ID).
		Str("mode", mode.String()).
		Int("changed", len(result.Changed)).
		Int("untouched", len(result.Skipped)).
		Int("unmapped", len(unmapped)).
		Str("stock_not_transferred", total.String()).
		Msg("invoice reconciled")

	return invoice, nil
}
