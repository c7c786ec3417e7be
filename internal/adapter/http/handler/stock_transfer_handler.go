package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/stockledger/internal/adapter/http/dto"
	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// StockTransferService defines the behavior needed by StockTransferHandler.
type StockTransferService interface {
	Create(ctx context.Context, input usecase.CreateStockTransferInput) (*domain.StockTransfer, error)
	Get(ctx context.Context, id string) (*domain.StockTransfer, error)
	ListByInvoice(ctx context.Context, input usecase.ListByInvoiceInput) ([]*domain.StockTransfer, error)
	UpdateItems(ctx context.Context, id string, items []domain.StockTransferItem) (*domain.StockTransfer, error)
	Discard(ctx context.Context, id string) error
	Movements(ctx context.Context, id string) ([]domain.StockMovement, error)
	GetPosting(ctx context.Context, id string) (*domain.LedgerPosting, error)
	Submit(ctx context.Context, id string) (*usecase.SubmitResult, error)
	Cancel(ctx context.Context, id string) (*usecase.CancelResult, error)
	Duplicate(ctx context.Context, id string) (*domain.StockTransfer, error)
	AuditTrail(ctx context.Context, id string) ([]*domain.AuditLog, error)
}

// StockTransferHandler handles stock transfer HTTP requests.
type StockTransferHandler struct {
	transferUC StockTransferService
}

// NewStockTransferHandler creates a new StockTransferHandler.
func NewStockTransferHandler(transferUC StockTransferService) *StockTransferHandler {
	return &StockTransferHandler{transferUC: transferUC}
}

// Create creates a draft transfer.
func (h *StockTransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStockTransferRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transfer, err := h.transferUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create stock transfer")
		return
	}

	writeJSON(w, http.StatusCreated, dto.StockTransferFromDomain(transfer))
}

// Get retrieves a transfer by ID.
func (h *StockTransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.transferUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to get stock transfer")
		return
	}

	writeJSON(w, http.StatusOK, dto.StockTransferFromDomain(transfer))
}

// ListByInvoice lists the transfers whose back reference is the invoice in the path.
func (h *StockTransferHandler) ListByInvoice(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.transferUC.ListByInvoice(r.Context(), usecase.ListByInvoiceInput{
		InvoiceID: chi.URLParam(r, "id"),
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list stock transfers")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListStockTransfersResponse{
		StockTransfers: dto.StockTransfersFromDomain(transfers),
		Total:          int64(len(transfers)),
	})
}

// UpdateItems replaces the lines of a draft.
func (h *StockTransferHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStockTransferItemsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transfer, err := h.transferUC.UpdateItems(r.Context(), chi.URLParam(r, "id"), req.ToDomain())
	if err != nil {
		writeDomainError(w, err, "failed to update stock transfer items")
		return
	}

	writeJSON(w, http.StatusOK, dto.StockTransferFromDomain(transfer))
}

// Discard deletes a draft.
func (h *StockTransferHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.transferUC.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, "failed to discard stock transfer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Movements lists the physical movement of each line.
func (h *StockTransferHandler) Movements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.transferUC.Movements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to get stock movements")
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}

// Posting returns the ledger posting of a transfer: a preview for a draft,
// the booked posting otherwise. 204 means a draft whose total cannot be
// computed yet.
func (h *StockTransferHandler) Posting(w http.ResponseWriter, r *http.Request) {
	posting, err := h.transferUC.GetPosting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to build ledger posting")
		return
	}
	if posting == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingFromDomain(posting))
}

// Submit posts a draft to the ledger.
func (h *StockTransferHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.transferUC.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to submit stock transfer")
		return
	}

	writeJSON(w, http.StatusOK, dto.SubmitFromUseCase(result))
}

// Cancel cancels a submitted transfer.
func (h *StockTransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.transferUC.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to cancel stock transfer")
		return
	}

	writeJSON(w, http.StatusOK, dto.CancelFromUseCase(result))
}

// Duplicate copies a transfer into a new draft.
func (h *StockTransferHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.transferUC.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to duplicate stock transfer")
		return
	}

	writeJSON(w, http.StatusCreated, dto.StockTransferFromDomain(transfer))
}

// AuditTrail lists the audit logs of a transfer.
func (h *StockTransferHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	logs, err := h.transferUC.AuditTrail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to get audit trail")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
