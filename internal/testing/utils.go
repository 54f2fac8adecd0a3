// Package testing provides shared helpers for engine-level and API-level tests.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/internal/engine"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/services"
)

// CreateTestEngine creates an engine backed by a per-test temp directory.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.NewEngine(t.TempDir())
	t.Cleanup(eng.Close)
	return eng
}

// CreateTestIndex creates an index with the default news mapping and analyzer.
func CreateTestIndex(t *testing.T, eng *engine.Engine, indexName string) config.IndexSettings {
	t.Helper()
	settings := config.IndexSettings{
		Name:   indexName,
		Fields: config.DefaultNewsFields(),
	}
	require.NoError(t, eng.CreateIndex(settings), "Failed to create test index")

	created, err := eng.GetIndexSettings(indexName)
	require.NoError(t, err)
	return created
}

// AddTestDocuments indexes a small fixed set of news documents.
func AddTestDocuments(t *testing.T, eng *engine.Engine, indexName string) []model.Document {
	t.Helper()
	indexAccessor, err := eng.GetIndex(indexName)
	require.NoError(t, err, "Failed to get index accessor")

	docs := []model.Document{
		{
			"uuid":      "doc1",
			"title":     "Machine learning improves weather forecasts",
			"text":      "Researchers report that machine learning models outperform classical forecasting.",
			"author":    "Jane Roe",
			"language":  "en",
			"sentiment": "positive",
			"published": "2024-01-15T10:00:00Z",
		},
		{
			"uuid":      "doc2",
			"title":     "Deep learning interest declines",
			"text":      "A survey suggests that interest in deep learning startups declines sharply.",
			"author":    "John Doe",
			"language":  "en",
			"sentiment": "negative",
			"published": "2024-02-20T08:30:00Z",
		},
		{
			"uuid":      "doc3",
			"title":     "Markets rally on tech earnings",
			"text":      "Technology stocks led a broad market rally after strong quarterly earnings.",
			"author":    "Jane Roe",
			"language":  "en",
			"sentiment": "positive",
			"published": "2024-03-01T16:45:00Z",
		},
	}

	result, err := indexAccessor.AddDocuments(docs)
	require.NoError(t, err, "Failed to add test documents")
	require.False(t, result.Failed(), "Test documents should all index cleanly: %+v", result.FailedDocuments)

	return docs
}

// WaitForJobCompletion polls a job until it reaches a terminal state or the
// timeout expires. Fails the test on job failure or timeout.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, timeout time.Duration) *model.Job {
	t.Helper()
	deadline := time.After(timeout)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			t.Fatalf("Job %s did not complete within %v", jobID, timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				return job
			case model.JobStatusFailed:
				t.Fatalf("Job %s failed: %s", jobID, job.Error)
			case model.JobStatusCancelled:
				t.Fatalf("Job %s was cancelled", jobID)
			}
		}
	}
}

// AssertJobCompleted verifies a job's terminal state and bookkeeping fields.
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedIndex string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedIndex, job.IndexName, "Job index name should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have an error")
}

// SearchTestCase is one query expectation against an already-populated index.
type SearchTestCase struct {
	Name          string
	Query         services.SearchQuery
	ExpectedCount int
	ExpectedIDs   []string // expected document IDs in result order; nil skips the check
}

// RunSearchTests runs a suite of search cases against an index.
func RunSearchTests(t *testing.T, indexAccessor services.IndexAccessor, tests []SearchTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			results, err := indexAccessor.Search(context.Background(), tt.Query)
			require.NoError(t, err, "Search should not fail")

			assert.Equal(t, tt.ExpectedCount, results.Total, "Result count should match")

			if tt.ExpectedIDs != nil {
				gotIDs := make([]string, len(results.Hits))
				for i, hit := range results.Hits {
					gotIDs[i] = hit.DocumentID
				}
				assert.Equal(t, tt.ExpectedIDs, gotIDs, "Result order should match")
			}
		})
	}
}
