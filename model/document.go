package model

// IDField is the document key holding the unique external identifier.
// Every ingested document must carry a non-empty string under this key.
const IDField = "uuid"

// Document is a flexible map representing a JSON document. The "uuid" field is
// the only required one; the remaining keys must match fields declared in the
// index settings (e.g. doc["title"], doc["published"]).
type Document map[string]interface{}

// GetID returns the document's external identifier, if present and non-empty.
func (d Document) GetID() (string, bool) {
	if id, ok := d[IDField]; ok {
		if str, sok := id.(string); sok {
			if str != "" {
				return str, true
			}
		}
	}
	return "", false
}

// FailedDocument records one document rejected during batch ingestion,
// identified by its external ID (or "<unknown>" when the ID itself was the
// problem) together with the rejection reason.
type FailedDocument struct {
	DocumentID string `json:"document_id"`
	Error      string `json:"error"`
}

// BatchResult reports the outcome of a batch ingest. Failed documents are
// collected, never silently dropped; callers are responsible for resubmission.
type BatchResult struct {
	IndexedCount    int              `json:"indexed_count"`
	FailedDocuments []FailedDocument `json:"failed_documents,omitempty"`
}

// Failed reports whether any document in the batch was rejected.
func (r BatchResult) Failed() bool {
	return len(r.FailedDocuments) > 0
}
