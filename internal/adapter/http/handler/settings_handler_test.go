package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/stockledger/internal/adapter/http/dto"
	"github.com/iho/stockledger/internal/domain"
	"github.com/iho/stockledger/internal/usecase"
)

type settingsServiceStub struct {
	values map[domain.SettingKey]string
	setErr error
}

func (s *settingsServiceStub) GetAccountSettings(ctx context.Context) ([]usecase.AccountSetting, error) {
	out := make([]usecase.AccountSetting, 0, len(domain.AllSettings()))
	for _, k := range domain.AllSettings() {
		out = append(out, usecase.AccountSetting{Key: k, Label: k.Label(), AccountID: s.values[k]})
	}
	return out, nil
}

func (s *settingsServiceStub) SetAccountSettings(ctx context.Context, values map[domain.SettingKey]string) error {
	if s.setErr != nil {
		return s.setErr
	}
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func TestSettingsHandler_Update(t *testing.T) {
	stub := &settingsServiceStub{values: map[domain.SettingKey]string{}}
	handler := NewSettingsHandler(stub)

	body := `{"settings":{"stockInHand":"acc-stock","costOfGoodsSold":"acc-cogs"}}`
	rec := httptest.NewRecorder()
	handler.Update(rec, httptest.NewRequest(http.MethodPut, "/settings/accounts", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []dto.AccountSettingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 4 || resp[0].Key != "stockInHand" || resp[0].AccountID != "acc-stock" {
		t.Fatalf("unexpected settings %+v", resp)
	}
}

func TestSettingsHandler_Update_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setErr error
		status int
	}{
		{"unknown key", `{"settings":{"stockOnMoon":"acc-1"}}`, nil, http.StatusBadRequest},
		{"empty", `{"settings":{}}`, nil, http.StatusBadRequest},
		{"unknown account", `{"settings":{"stockInHand":"acc-gone"}}`, domain.ErrAccountNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSettingsHandler(&settingsServiceStub{values: map[domain.SettingKey]string{}, setErr: tt.setErr})

			rec := httptest.NewRecorder()
			handler.Update(rec, httptest.NewRequest(http.MethodPut, "/settings/accounts", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
