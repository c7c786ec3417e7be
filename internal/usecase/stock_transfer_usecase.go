package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/infrastructure/metrics"
)

// StockTransferDeps groups the collaborators of StockTransferUseCase.
// Locker, Retrier, AuditRepo and Metrics are optional.
type StockTransferDeps struct {
	TxManager    TransactionManager
	TransferRepo StockTransferRepository
	InvoiceRepo  InvoiceRepository
	AccountRepo  AccountRepository
	PostingRepo  PostingRepository
	OutboxRepo   OutboxRepository
	AuditRepo    AuditRepository
	Validator    *AccountValidator
	Builder      *PostingBuilder
	Reconciler   *BackReferenceReconciler
	Locker       InvoiceLocker
	Retrier      Retrier
	IDGen        IDGenerator
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
}

// StockTransferUseCase handles the stock transfer lifecycle.
type StockTransferUseCase struct {
	txManager    TransactionManager
	transferRepo StockTransferRepository
	invoiceRepo  InvoiceRepository
	accountRepo  AccountRepository
	postingRepo  PostingRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	validator    *AccountValidator
	builder      *PostingBuilder
	reconciler   *BackReferenceReconciler
	locker       InvoiceLocker
	retrier      Retrier
	idGen        IDGenerator
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewStockTransferUseCase creates a new StockTransferUseCase.
func NewStockTransferUseCase(deps StockTransferDeps) *StockTransferUseCase {
	return &StockTransferUseCase{
		txManager:    deps.TxManager,
		transferRepo: deps.TransferRepo,
		invoiceRepo:  deps.InvoiceRepo,
		accountRepo:  deps.AccountRepo,
		postingRepo:  deps.PostingRepo,
		outboxRepo:   deps.OutboxRepo,
		auditRepo:    deps.AuditRepo,
		validator:    deps.Validator,
		builder:      deps.Builder,
		reconciler:   deps.Reconciler,
		locker:       deps.Locker,
		retrier:      deps.Retrier,
		idGen:        deps.IDGen,
		logger:       deps.Logger.With().Str("component", "stock_transfer").Logger(),
		metrics:      deps.Metrics,
	}
}

// CreateStockTransferInput represents input for creating a draft transfer.
type CreateStockTransferInput struct {
	Direction     string
	BackReference string
	Items         []domain.StockTransferItem
}

// Create stores a new draft. A back reference must name an existing invoice
// of the kind the direction posts against.
func (uc *StockTransferUseCase) Create(ctx context.Context, input CreateStockTransferInput) (*domain.StockTransfer, error) {
	direction, err := domain.ParseDirection(input.Direction)
	if err != nil {
		return nil, err
	}

	if input.BackReference != "" {
		invoice, err := uc.invoiceRepo.GetByID(ctx, input.BackReference)
		if err != nil {
			return nil, err
		}
		if invoice.Kind != direction.InvoiceKind() {
			return nil, fmt.Errorf("%w: %s transfer cannot reference %s invoice",
				domain.ErrInvalidInvoiceKind, direction, invoice.Kind)
		}
	}

	now := time.Now().UTC()
	transfer := &domain.StockTransfer{
		ID:            uc.idGen.Generate(),
		Direction:     direction,
		Status:        domain.TransferStatusDraft,
		BackReference: input.BackReference,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := transfer.SetItems(input.Items); err != nil {
		return nil, err
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
	}

	return transfer, nil
}

// Get retrieves a stock transfer by ID.
func (uc *StockTransferUseCase) Get(ctx context.Context, id string) (*domain.StockTransfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListByInvoiceInput represents input for listing the transfers of an invoice.
type ListByInvoiceInput struct {
	InvoiceID string
	Limit     int
	Offset    int
}

// ListByInvoice lists the transfers referencing an invoice.
func (uc *StockTransferUseCase) ListByInvoice(ctx context.Context, input ListByInvoiceInput) ([]*domain.StockTransfer, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.transferRepo.ListByBackReference(ctx, input.InvoiceID, limit, offset)
}

// UpdateItems replaces the lines of a draft and recomputes its total.
func (uc *StockTransferUseCase) UpdateItems(ctx context.Context, id string, items []domain.StockTransferItem) (*domain.StockTransfer, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := transfer.SetItems(items); err != nil {
		return nil, err
	}
	transfer.UpdatedAt = time.Now().UTC()

	if err := uc.transferRepo.Update(ctx, tx, transfer); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	transfer.Version++

	return transfer, nil
}

// Discard deletes a draft.
func (uc *StockTransferUseCase) Discard(ctx context.Context, id string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := transfer.CanDiscard(); err != nil {
		return err
	}

	if err := uc.transferRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	if err := uc.audit(ctx, tx, domain.AuditActionStockTransferDiscard, id, transfer, nil); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Movements returns the physical stock movements of a transfer.
func (uc *StockTransferUseCase) Movements(ctx context.Context, id string) ([]domain.StockMovement, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.ExtractMovements(transfer), nil
}

// GetPosting returns the posting of a submitted or cancelled transfer as it
// was booked. For a draft it validates the account settings and builds a
// preview. The posting is nil when the draft's total cannot be computed yet.
func (uc *StockTransferUseCase) GetPosting(ctx context.Context, id string) (*domain.LedgerPosting, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if transfer.Status != domain.TransferStatusDraft {
		return uc.postingRepo.GetByTransfer(ctx, id)
	}

	if _, ok := transfer.ComputeTotal(); !ok {
		return nil, nil
	}

	if err := uc.validator.Validate(ctx, transfer.Direction); err != nil {
		uc.recordConfigurationError(err)
		return nil, err
	}

	return uc.builder.Build(ctx, transfer)
}

// SubmitResult is the outcome of submitting a transfer.
type SubmitResult struct {
	Transfer *domain.StockTransfer
	Posting  *domain.LedgerPosting
	Invoice  *domain.Invoice
}

// Submit posts a draft to the ledger and consumes the not-transferred
// quantities of its invoice. Posting, status change and invoice update
// commit in one transaction.
func (uc *StockTransferUseCase) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	start := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "StockTransferUseCase.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.id", id))

	var result *SubmitResult
	err := uc.withInvoiceLock(ctx, id, func() error {
		var err error
		result, err = uc.submit(ctx, id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.recordConfigurationError(err)
		if uc.metrics != nil {
			uc.metrics.TransferErrors.WithLabelValues("submit").Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersSubmitted.WithLabelValues(string(result.Transfer.Direction)).Inc()
		uc.metrics.PostingAmount.Observe(result.Transfer.TotalAmount.InexactFloat64())
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
		if result.Posting.RoundOff != nil {
			uc.metrics.RoundOffEntries.Inc()
		}
	}

	uc.logger.Info().
		Str("transfer_id", id).
		Str("direction", string(result.Transfer.Direction)).
		Str("back_reference", result.Transfer.BackReference).
		Str("total", result.Transfer.TotalAmount.String()).
		Msg("stock transfer submitted")

	return result, nil
}

func (uc *StockTransferUseCase) submit(ctx context.Context, id string) (*SubmitResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transfer, err := uc.transferRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != domain.TransferStatusDraft {
		return nil, &domain.TransitionError{From: transfer.Status, Action: "submit"}
	}
	if _, ok := transfer.ComputeTotal(); !ok {
		return nil, domain.ErrTotalNotComputable
	}
	transfer.RecomputeTotal()

	if err := uc.validator.Validate(txCtx, transfer.Direction); err != nil {
		return nil, err
	}

	posting, err := uc.builder.Build(txCtx, transfer)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posting.ID = uc.idGen.Generate()
	posting.CreatedAt = now

	if err := uc.postingRepo.Create(txCtx, tx, posting); err != nil {
		return nil, err
	}
	if err := uc.applyPosting(txCtx, tx, posting, now); err != nil {
		return nil, err
	}

	before := *transfer
	if err := transfer.Submit(now); err != nil {
		return nil, err
	}
	if err := uc.transferRepo.Update(txCtx, tx, transfer); err != nil {
		return nil, err
	}
	transfer.Version++

	invoice, err := uc.reconciler.Reconcile(txCtx, tx, transfer)
	if err != nil {
		return nil, err
	}

	submitted := domain.StockTransferSubmittedEvent{
		TransferID:    transfer.ID,
		Direction:     string(transfer.Direction),
		BackReference: transfer.BackReference,
		TotalAmount:   transfer.TotalAmount.String(),
		PostingID:     posting.ID,
	}
	if err := uc.emit(txCtx, tx, domain.AggregateTypeStockTransfer, transfer.ID,
		domain.EventTypeStockTransferSubmitted, submitted.Payload(), now); err != nil {
		return nil, err
	}
	if err := uc.emitReconciled(txCtx, tx, invoice, transfer, domain.ReconcileSubmit, now); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionStockTransferSubmit, transfer.ID, &before, transfer); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &SubmitResult{Transfer: transfer, Posting: posting, Invoice: invoice}, nil
}

// CancelResult is the outcome of cancelling a transfer.
type CancelResult struct {
	Transfer *domain.StockTransfer
	Invoice  *domain.Invoice
}

// Cancel moves a submitted transfer to cancelled and gives its quantities
// back to the invoice. The ledger posting is left as booked.
func (uc *StockTransferUseCase) Cancel(ctx context.Context, id string) (*CancelResult, error) {
	start := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "StockTransferUseCase.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.id", id))

	var result *CancelResult
	err := uc.withInvoiceLock(ctx, id, func() error {
		var err error
		result, err = uc.cancel(ctx, id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if uc.metrics != nil {
			uc.metrics.TransferErrors.WithLabelValues("cancel").Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCancelled.WithLabelValues(string(result.Transfer.Direction)).Inc()
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("transfer_id", id).
		Str("back_reference", result.Transfer.BackReference).
		Msg("stock transfer cancelled")

	return result, nil
}

func (uc *StockTransferUseCase) cancel(ctx context.Context, id string) (*CancelResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transfer, err := uc.transferRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	before := *transfer
	if err := transfer.Cancel(now); err != nil {
		return nil, err
	}
	if err := uc.transferRepo.Update(txCtx, tx, transfer); err != nil {
		return nil, err
	}
	transfer.Version++

	invoice, err := uc.reconciler.Reconcile(txCtx, tx, transfer)
	if err != nil {
		return nil, err
	}

	cancelled := domain.StockTransferCancelledEvent{
		TransferID:    transfer.ID,
		Direction:     string(transfer.Direction),
		BackReference: transfer.BackReference,
	}
	if err := uc.emit(txCtx, tx, domain.AggregateTypeStockTransfer, transfer.ID,
		domain.EventTypeStockTransferCancelled, cancelled.Payload(), now); err != nil {
		return nil, err
	}
	if err := uc.emitReconciled(txCtx, tx, invoice, transfer, domain.ReconcileCancel, now); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionStockTransferCancel, transfer.ID, &before, transfer); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &CancelResult{Transfer: transfer, Invoice: invoice}, nil
}

// Duplicate copies a transfer into a new draft without its back reference.
func (uc *StockTransferUseCase) Duplicate(ctx context.Context, id string) (*domain.StockTransfer, error) {
	original, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dup := original.Duplicate(uc.idGen.Generate(), now)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.transferRepo.Create(ctx, tx, dup); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"transfer_id":   dup.ID,
		"duplicated_of": original.ID,
	}
	if err := uc.emit(ctx, tx, domain.AggregateTypeStockTransfer, dup.ID,
		domain.EventTypeStockTransferDuplicated, payload, now); err != nil {
		return nil, err
	}

	if err := uc.audit(ctx, tx, domain.AuditActionStockTransferDuplicate, dup.ID, original, dup); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
	}

	return dup, nil
}

// withInvoiceLock runs fn under the lock of the transfer's invoice, retrying
// it on transient database errors.
func (uc *StockTransferUseCase) withInvoiceLock(ctx context.Context, id string, fn func() error) error {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if uc.locker != nil && transfer.HasBackReference() {
		release, err := uc.locker.Lock(ctx, transfer.BackReference)
		if err != nil {
			if errors.Is(err, domain.ErrInvoiceLocked) && uc.metrics != nil {
				uc.metrics.LockContention.Inc()
			}
			return err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				uc.logger.Warn().Err(err).Str("invoice_id", transfer.BackReference).Msg("failed to release invoice lock")
			}
		}()
	}

	if uc.retrier == nil {
		return fn()
	}
	return uc.retrier.Retry(ctx, fn)
}

// applyPosting books every entry on its account. Accounts are locked in
// sorted order.
func (uc *StockTransferUseCase) applyPosting(ctx context.Context, tx Transaction, posting *domain.LedgerPosting, now time.Time) error {
	entries := posting.AllEntries()

	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	for _, e := range entries {
		account := byID[e.AccountID]
		if account == nil {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, e.AccountID)
		}
		account.Balance = account.Apply(e)
		account.Version++
	}

	for _, id := range ids {
		if err := uc.accountRepo.UpdateBalance(ctx, tx, id, byID[id].Balance, now); err != nil {
			return err
		}
	}
	return nil
}

func (uc *StockTransferUseCase) emitReconciled(ctx context.Context, tx Transaction, invoice *domain.Invoice, transfer *domain.StockTransfer, mode domain.ReconcileMode, now time.Time) error {
	if invoice == nil {
		return nil
	}
	event := domain.InvoiceReconciledEvent{
		InvoiceID:           invoice.ID,
		TransferID:          transfer.ID,
		Mode:                mode.String(),
		StockNotTransferred: invoice.StockNotTransferred.String(),
	}
	return uc.emit(ctx, tx, domain.AggregateTypeInvoice, invoice.ID, domain.EventTypeInvoiceReconciled, event.Payload(), now)
}

func (uc *StockTransferUseCase) emit(ctx context.Context, tx Transaction, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	})
}

func (uc *StockTransferUseCase) audit(ctx context.Context, tx Transaction, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actorFromContext(ctx),
		Action:       string(action),
		ResourceType: domain.AggregateTypeStockTransfer,
		ResourceID:   resourceID,
		RequestID:    requestIDFromContext(ctx),
		BeforeState:  marshalOptional(before),
		AfterState:   marshalOptional(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}
	return nil
}

func (uc *StockTransferUseCase) recordConfigurationError(err error) {
	if uc.metrics != nil && errors.Is(err, domain.ErrAccountsNotConfigured) {
		uc.metrics.ConfigurationFails.Inc()
	}
}

func marshalOptional(v any) domain.JSON {
	switch t := v.(type) {
	case nil:
		return nil
	case *domain.StockTransfer:
		if t == nil {
			return nil
		}
	}
	return domain.MarshalState(v)
}

// AuditTrail lists the audit logs recorded for a transfer.
func (uc *StockTransferUseCase) AuditTrail(ctx context.Context, id string) ([]*domain.AuditLog, error) {
	if uc.auditRepo == nil {
		return nil, nil
	}
	return uc.auditRepo.GetByResourceID(ctx, domain.AggregateTypeStockTransfer, id)
}
