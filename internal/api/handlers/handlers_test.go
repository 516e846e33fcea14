package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/jobs"
	"ledgerlens/internal/session"
)

// stubPublisher records published tasks without running them.
type stubPublisher struct {
	published []*jobs.Task
	err       error
}

func (p *stubPublisher) Publish(ctx context.Context, task *jobs.Task) error {
	if p.err != nil {
		return p.err
	}
	if task.JobID == "" {
		task.JobID = "stub-job"
	}
	task.Status = jobs.JobStatusPending
	p.published = append(p.published, task)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func multipartUpload(t *testing.T, filename, content, settings string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing file part: %v", err)
	}
	if settings != "" {
		if err := writer.WriteField("settings", settings); err != nil {
			t.Fatalf("writing settings part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

const germanCSV = "Buchungstag;Verwendungszweck;Betrag\n" +
	"03.01.2024;REWE MARKT KOELN;-54,20\n" +
	"05.01.2024;GEHALT ACME GMBH;3.200,00\n" +
	"06.01.2024;UBER EATS;-23,10\n"

const germanSettings = `{"delimiter":";","dateFormat":"DD.MM.YYYY","decimalSeparator":","}`

func TestImportPreview(t *testing.T) {
	store := session.NewStore()
	h := NewImportsHandler(store, zerolog.Nop())

	body, contentType := multipartUpload(t, "bank.csv", germanCSV, germanSettings)
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Preview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Headers) != 3 || resp.Headers[0] != "Buchungstag" {
		t.Errorf("headers = %v", resp.Headers)
	}
	if resp.Mapping.Date != 0 || resp.Mapping.Description != 1 || resp.Mapping.Amount != 2 {
		t.Errorf("guessed mapping = %+v", resp.Mapping)
	}
	if resp.Rows != 3 {
		t.Errorf("rows = %d, want 3", resp.Rows)
	}
}

func TestImportCommitAddsTransactions(t *testing.T) {
	store := session.NewStore()
	store.AddRule(domain.Rule{Keyword: "uber eats", Category: "Food"})
	h := NewImportsHandler(store, zerolog.Nop())

	body, contentType := multipartUpload(t, "bank.csv", germanCSV, germanSettings)
	req := httptest.NewRequest(http.MethodPost, "/api/import/commit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Commit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp commitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Imported != 3 || len(resp.Failures) != 0 {
		t.Fatalf("response = %+v", resp)
	}

	txns := store.Transactions()
	if len(txns) != 3 {
		t.Fatalf("store holds %d transactions, want 3", len(txns))
	}
	for _, tx := range txns {
		if strings.Contains(strings.ToLower(tx.Description), "uber eats") && tx.Category != "Food" {
			t.Errorf("rule not applied on import: %+v", tx)
		}
		if tx.Source != "bank.csv" {
			t.Errorf("source = %q, want bank.csv", tx.Source)
		}
	}
}

func TestImportCommitRejectsEmptyFile(t *testing.T) {
	store := session.NewStore()
	h := NewImportsHandler(store, zerolog.Nop())

	body, contentType := multipartUpload(t, "empty.csv", "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/import/commit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Commit(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if len(store.Transactions()) != 0 {
		t.Error("failed import must not touch the session")
	}
}

func TestDeleteBySourceEndpoint(t *testing.T) {
	store := session.NewStore()
	store.ReplaceTransactions([]domain.Transaction{
		{ID: "t1", Source: "a.csv", Type: domain.Expense, Amount: 1},
		{ID: "t2", Source: "b.csv", Type: domain.Expense, Amount: 2},
	})
	h := NewTransactionsHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions?source=a.csv", nil)
	rec := httptest.NewRecorder()
	h.DeleteBySource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.Transactions()) != 1 {
		t.Errorf("store holds %d transactions, want 1", len(store.Transactions()))
	}
}

func TestReapplyEnqueuesJob(t *testing.T) {
	store := session.NewStore()
	pub := &stubPublisher{}
	h := NewRulesHandler(store, pub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/rules/reapply", nil)
	rec := httptest.NewRecorder()
	h.Reapply(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if len(pub.published) != 1 || pub.published[0].Type != jobs.JobTypeApplyRules {
		t.Errorf("published = %+v", pub.published)
	}
}

func TestSessionExportImportRoundTrip(t *testing.T) {
	store := session.NewStore()
	store.ReplaceTransactions([]domain.Transaction{
		{ID: "t1", Date: "2024-01-03", Description: "REWE", Amount: 54.20, Type: domain.Expense, Category: "Groceries"},
	})
	store.AddRule(domain.Rule{Keyword: "rewe", Category: "Groceries"})
	h := NewSessionHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/api/session/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	exported := rec.Body.Bytes()

	// Import into a fresh session.
	fresh := session.NewStore()
	h2 := NewSessionHandler(fresh, zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/session/import", bytes.NewReader(exported))
	rec2 := httptest.NewRecorder()
	h2.Import(rec2, req)

	if rec2.Code != http.StatusOK {
		t.Fatalf("import status = %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if len(fresh.Transactions()) != 1 || len(fresh.Rules()) != 1 {
		t.Errorf("restored session: %d txns, %d rules", len(fresh.Transactions()), len(fresh.Rules()))
	}
}

func TestAIEndpointsWithoutProvider(t *testing.T) {
	store := session.NewStore()
	h := NewAIHandler(store, nil, &stubPublisher{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Categorize(rec, httptest.NewRequest(http.MethodPost, "/api/ai/categorize", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
