package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func withServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	orig := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = orig })
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1})

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestCheckConsistency(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		want    string
	}{
		{"balanced", http.StatusOK, `{"total_debits":"10","total_credits":"10","difference":"0","consistent":true}`, false, "PASSED"},
		{"unbalanced", http.StatusConflict, `{"total_debits":"10","total_credits":"9","difference":"1","consistent":false}`, true, "Difference: 1"},
		{"server error", http.StatusInternalServerError, `{"error":"failed to check consistency"}`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/ledger/consistency" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			var buf bytes.Buffer
			err := checkConsistency(&buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Fatalf("expected output to contain %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestShowPosting(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/stock-transfers/st-1/posting":
			_, _ = w.Write([]byte(`{"transfer_id":"st-1","entries":[
				{"account_id":"acc-cogs","side":"debit","amount":"8.34"},
				{"account_id":"acc-stock","side":"credit","amount":"8.33"},
				{"account_id":"acc-round","side":"credit","amount":"0.01","round_off":true}]}`))
		case "/api/v1/stock-transfers/st-2/posting":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"stock transfer not found"}`))
		}
	})

	var buf bytes.Buffer
	if err := showPosting(&buf, "st-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "acc-cogs") || !strings.Contains(out, "acc-round (round)") {
		t.Fatalf("unexpected posting output:\n%s", out)
	}

	buf.Reset()
	if err := showPosting(&buf, "st-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No posting") {
		t.Fatalf("expected no-posting notice, got %q", buf.String())
	}

	if err := showPosting(&buf, "st-3"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestTransitionReportsMissingAccounts(t *testing.T) {
	var gotActor, gotMethod string
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotActor = r.Header.Get("X-Actor")
		gotMethod = r.Method
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"ledger accounts not configured","details":["Stock In Hand account not set"]}`))
	})

	err := transition(&bytes.Buffer{}, "st-1", "submit")
	if err == nil || !strings.Contains(err.Error(), "Stock In Hand account not set") {
		t.Fatalf("expected missing account details, got %v", err)
	}
	if gotMethod != http.MethodPost || gotActor != "cli" {
		t.Fatalf("unexpected request method=%s actor=%q", gotMethod, gotActor)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"ledger", "consistency"},
		{"transfer", "posting"},
		{"transfer", "submit"},
		{"transfer", "cancel"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("expected command %v, got %v (%v)", path, cmd, err)
		}
	}
}
