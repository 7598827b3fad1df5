package schema

import (
	"encoding/json"
	"testing"
)

func TestDocumentStatus_MissingDecodesAsDraft(t *testing.T) {
	cases := []string{
		`{"id":"d1","clientId":"c1","title":"t"}`,
		`{"id":"d1","clientId":"c1","title":"t","status":""}`,
		`{"id":"d1","clientId":"c1","title":"t","status":null}`,
	}
	for _, in := range cases {
		var doc ClientDocument
		if err := json.Unmarshal([]byte(in), &doc); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", in, err)
		}
		doc.Normalize()
		if doc.Status != StatusDraft {
			t.Errorf("Unmarshal(%s): expected Draft, got %q", in, doc.Status)
		}
	}
}

func TestDocumentStatus_KeepsUnknownValues(t *testing.T) {
	var doc ClientDocument
	if err := json.Unmarshal([]byte(`{"status":"Archived"}`), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.Status != "Archived" {
		t.Errorf("Expected Archived, got %q", doc.Status)
	}
	if doc.Status.Valid() {
		t.Error("Archived should not be a valid status")
	}
}

func TestClientDocument_OmitsSignatureUntilSigned(t *testing.T) {
	doc := ClientDocument{ID: "d1", ClientID: "c1", Title: "GST Computation", Status: StatusDraft}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := raw["signedBy"]; ok {
		t.Error("signedBy should be omitted for unsigned documents")
	}
	if _, ok := raw["signedAt"]; ok {
		t.Error("signedAt should be omitted for unsigned documents")
	}
}
