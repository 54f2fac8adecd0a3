package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/internal/engine"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	testutils "github.com/newsearch/news-search-engine/internal/testing"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/services"
)

func TestCreateIndexCapturesFingerprint(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	settings := testutils.CreateTestIndex(t, eng, "news")

	assert.Equal(t, "news", settings.Name)
	assert.Equal(t, settings.Analyzer.Fingerprint(), settings.AnalyzerFingerprint,
		"creation should capture the analyzer fingerprint")

	_, err := eng.GetIndex("news")
	assert.NoError(t, err)
	assert.Equal(t, []string{"news"}, eng.ListIndexes())
}

func TestCreateIndexDuplicate(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "news")

	err := eng.CreateIndex(config.IndexSettings{Name: "news"})
	assert.ErrorIs(t, err, internalErrors.ErrIndexAlreadyExists)
}

func TestCreateIndexRejectsInvalidSettings(t *testing.T) {
	eng := testutils.CreateTestEngine(t)

	err := eng.CreateIndex(config.IndexSettings{
		Name:   "bad",
		Fields: []config.FieldMapping{{Name: "title", Type: "integer"}},
	})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "undeclared type")

	_, getErr := eng.GetIndex("bad")
	assert.ErrorIs(t, getErr, internalErrors.ErrIndexNotFound)
}

func TestGetIndexNotFound(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	_, err := eng.GetIndex("missing")
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)
}

func TestPersistenceRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	eng := engine.NewEngine(dataDir)
	testutils.CreateTestIndex(t, eng, "news")
	testutils.AddTestDocuments(t, eng, "news")
	require.NoError(t, eng.PersistIndexData("news"))
	eng.Close()

	// A fresh engine over the same directory sees the same index and data.
	reloaded := engine.NewEngine(dataDir)
	t.Cleanup(reloaded.Close)

	settings, err := reloaded.GetIndexSettings("news")
	require.NoError(t, err)
	assert.Equal(t, "news", settings.Name)
	assert.Equal(t, settings.Analyzer.Fingerprint(), settings.AnalyzerFingerprint)

	accessor, err := reloaded.GetIndex("news")
	require.NoError(t, err)
	result, err := accessor.Search(context.Background(), services.SearchQuery{QueryString: "learning"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total, "persisted postings should answer queries after reload")
	assert.Empty(t, result.Warnings)
}

func TestUpdateIndexSettingsPreservesIndexedFingerprint(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	created := testutils.CreateTestIndex(t, eng, "news")
	testutils.AddTestDocuments(t, eng, "news")

	// Change the analyzer (custom stopword list) without reindexing.
	updated := created
	updated.Analyzer.Stopwords = []string{"report"}
	require.NoError(t, eng.UpdateIndexSettings("news", updated))

	settings, err := eng.GetIndexSettings("news")
	require.NoError(t, err)
	assert.Equal(t, created.AnalyzerFingerprint, settings.AnalyzerFingerprint,
		"the fingerprint of the configuration that built the postings must survive the update")
	assert.NotEqual(t, settings.Analyzer.Fingerprint(), settings.AnalyzerFingerprint)

	// Searches keep working but carry a mismatch warning.
	accessor, err := eng.GetIndex("news")
	require.NoError(t, err)
	result, err := accessor.Search(context.Background(), services.SearchQuery{QueryString: "learning"})
	require.NoError(t, err)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "analyzer")
}

func TestReindexClearsAnalyzerMismatch(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	created := testutils.CreateTestIndex(t, eng, "news")
	testutils.AddTestDocuments(t, eng, "news")

	updated := created
	updated.Analyzer.Stopwords = []string{"report"}
	require.NoError(t, eng.UpdateIndexSettings("news", updated))

	jobID, err := eng.StartReindex("news")
	require.NoError(t, err)
	job := testutils.WaitForJobCompletion(t, eng, jobID, 5*time.Second)
	testutils.AssertJobCompleted(t, job, model.JobTypeReindex, "news")

	settings, err := eng.GetIndexSettings("news")
	require.NoError(t, err)
	assert.Equal(t, settings.Analyzer.Fingerprint(), settings.AnalyzerFingerprint,
		"reindex should refresh the captured fingerprint")

	accessor, err := eng.GetIndex("news")
	require.NoError(t, err)
	result, err := accessor.Search(context.Background(), services.SearchQuery{QueryString: "learning"})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestUpdateIndexSettingsNotFound(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	err := eng.UpdateIndexSettings("missing", config.IndexSettings{Name: "missing"})
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)
}

func TestRenameIndex(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "old-name")
	testutils.AddTestDocuments(t, eng, "old-name")

	require.NoError(t, eng.RenameIndex("old-name", "new-name"))

	_, err := eng.GetIndex("old-name")
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)

	accessor, err := eng.GetIndex("new-name")
	require.NoError(t, err)
	result, err := accessor.Search(context.Background(), services.SearchQuery{QueryString: "learning"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total, "documents travel with the rename")

	settings, err := eng.GetIndexSettings("new-name")
	require.NoError(t, err)
	assert.Equal(t, "new-name", settings.Name)
}

func TestRenameIndexErrors(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "alpha")
	testutils.CreateTestIndex(t, eng, "beta")

	assert.ErrorIs(t, eng.RenameIndex("alpha", "alpha"), internalErrors.ErrSameName)
	assert.ErrorIs(t, eng.RenameIndex("missing", "gamma"), internalErrors.ErrIndexNotFound)
	assert.ErrorIs(t, eng.RenameIndex("alpha", "beta"), internalErrors.ErrIndexAlreadyExists)
	assert.ErrorIs(t, eng.RenameIndex("alpha", "   "), internalErrors.ErrInvalidInput)
}

func TestDeleteIndex(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "news")

	require.NoError(t, eng.DeleteIndex("news"))
	_, err := eng.GetIndex("news")
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)

	assert.ErrorIs(t, eng.DeleteIndex("news"), internalErrors.ErrIndexNotFound)
}

func TestIndexStats(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "news")
	testutils.AddTestDocuments(t, eng, "news")

	stats, err := eng.GetIndexStats("news")
	require.NoError(t, err)
	assert.Equal(t, "news", stats.Name)
	assert.Equal(t, 3, stats.DocumentCount)
	assert.Positive(t, stats.TermCount)
	assert.Zero(t, stats.TombstoneCount)

	accessor, err := eng.GetIndex("news")
	require.NoError(t, err)
	require.NoError(t, accessor.DeleteDocument("doc2"))

	stats, err = eng.GetIndexStats("news")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 1, stats.TombstoneCount)

	_, err = eng.GetIndexStats("missing")
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)
}

func TestCompactionJob(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "news")
	testutils.AddTestDocuments(t, eng, "news")

	accessor, err := eng.GetIndex("news")
	require.NoError(t, err)
	require.NoError(t, accessor.DeleteDocument("doc2"))

	jobID, err := eng.StartCompaction("news")
	require.NoError(t, err)
	job := testutils.WaitForJobCompletion(t, eng, jobID, 5*time.Second)
	testutils.AssertJobCompleted(t, job, model.JobTypeCompaction, "news")

	stats, err := eng.GetIndexStats("news")
	require.NoError(t, err)
	assert.Zero(t, stats.TombstoneCount, "compaction should clear tombstones")

	// The deleted document stays invisible after compaction.
	result, err := accessor.Search(context.Background(), services.SearchQuery{QueryString: "declines"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestStartJobOnMissingIndex(t *testing.T) {
	eng := testutils.CreateTestEngine(t)

	_, err := eng.StartCompaction("missing")
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)
	_, err = eng.StartReindex("missing")
	assert.ErrorIs(t, err, internalErrors.ErrIndexNotFound)
}

func TestListJobsAndMetrics(t *testing.T) {
	eng := testutils.CreateTestEngine(t)
	testutils.CreateTestIndex(t, eng, "news")
	testutils.AddTestDocuments(t, eng, "news")

	jobID, err := eng.StartCompaction("news")
	require.NoError(t, err)
	testutils.WaitForJobCompletion(t, eng, jobID, 5*time.Second)

	jobsForIndex := eng.ListJobs("news", nil)
	require.Len(t, jobsForIndex, 1)
	assert.Equal(t, jobID, jobsForIndex[0].ID)

	completed := model.JobStatusCompleted
	assert.Len(t, eng.ListJobs("news", &completed), 1)
	running := model.JobStatusRunning
	assert.Empty(t, eng.ListJobs("news", &running))

	metrics := eng.GetJobMetrics()
	assert.GreaterOrEqual(t, metrics.JobsCreated, int64(1))
	assert.GreaterOrEqual(t, metrics.JobsCompleted, int64(1))

	_, err = eng.GetJob("no-such-job")
	assert.ErrorIs(t, err, internalErrors.ErrJobNotFound)
}

func TestLoadSkipsCorruptIndexDirectories(t *testing.T) {
	dataDir := t.TempDir()

	eng := engine.NewEngine(dataDir)
	testutils.CreateTestIndex(t, eng, "good")
	eng.Close()

	// A directory with no settings file is skipped on load, not fatal.
	require.NoError(t, writeGarbageIndexDir(dataDir, "broken"))

	reloaded := engine.NewEngine(dataDir)
	t.Cleanup(reloaded.Close)
	assert.Equal(t, []string{"good"}, reloaded.ListIndexes())
}

// writeGarbageIndexDir creates an index directory whose settings file is not a
// valid gob stream.
func writeGarbageIndexDir(dataDir, name string) error {
	dir := filepath.Join(dataDir, name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "settings.gob"), []byte("not a gob stream"), 0640)
}
