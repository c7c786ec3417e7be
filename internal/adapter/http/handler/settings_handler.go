package handler

import (
	"context"
	"net/http"

	"github.com/iho/stockledger/internal/adapter/http/dto"
	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

// SettingsService defines the behavior needed by SettingsHandler.
type SettingsService interface {
	GetAccountSettings(ctx context.Context) ([]usecase.AccountSetting, error)
	SetAccountSettings(ctx context.Context, values map[domain.SettingKey]string) error
}

// SettingsHandler serves the ledger account settings.
type SettingsHandler struct {
	settingsUC SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsUC SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsUC: settingsUC}
}

// Get lists every account setting.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsUC.GetAccountSettings(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to read account settings")
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountSettingsFromUseCase(settings))
}

// Update sets the given account settings and returns the full listing.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAccountSettingsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.settingsUC.SetAccountSettings(r.Context(), req.ToSettings()); err != nil {
		writeDomainError(w, err, "failed to update account settings")
		return
	}

	h.Get(w, r)
}
