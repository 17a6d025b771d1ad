package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

func TestJSONMergesMapPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, 200, map[string]any{"manifest": "x"})

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
	if body["manifest"] != "x" {
		t.Errorf("manifest = %v, want x", body["manifest"])
	}
}

func TestJSONWrapsNonMapPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, 200, []string{"a", "b"})

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 2 {
		t.Errorf("data = %v", body["data"])
	}
}

func TestErrorWritesEnvelopeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apierr.New(apierr.S020SessionNotFound, "session not found", nil)
	Error(rec, err)

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body map[string]any
	if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
		t.Fatalf("unmarshal: %v", jerr)
	}
	if body["ok"] != false {
		t.Errorf("ok = %v, want false", body["ok"])
	}
	errObj, ok := body["error"].(map[string]any)
	if !ok || errObj["code"] != "S020" {
		t.Errorf("error = %v", body["error"])
	}
}
