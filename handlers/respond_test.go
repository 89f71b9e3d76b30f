package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursevault-backend/logging"
)

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	logger, err := logging.New("debug", "json", &logs)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	writeJSON(rec, logging.NewComponentLogger(logger, "title_handler"), http.StatusOK, map[string]any{"bad": func() {}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := logs.String()
	if !strings.Contains(out, "failed to encode response") || !strings.Contains(out, `"component":"title_handler"`) {
		t.Fatalf("encode failure not logged through the handler logger: %q", out)
	}
}

func TestWriteErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, logging.NewNop(), http.StatusNotFound, "Course not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"Course not found"}` {
		t.Fatalf("body = %q", body)
	}
}
