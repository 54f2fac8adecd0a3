package engine

import (
	"context"

	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/internal/jobs"
	"github.com/newsearch/news-search-engine/model"
)

// StartCompaction begins asynchronous compaction of an index's posting lists
// and returns the tracking job ID.
func (e *Engine) StartCompaction(indexName string) (string, error) {
	e.mu.RLock()
	instance, exists := e.indexes[indexName]
	e.mu.RUnlock()

	if !exists {
		return "", internalErrors.NewIndexNotFoundError(indexName)
	}

	jobID := e.jobManager.CreateJob(model.JobTypeCompaction, indexName, nil)
	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		if err := instance.Compact(ctx); err != nil {
			return err
		}
		return e.persistInstance(instance)
	})
	if err != nil {
		return "", err
	}
	return jobID, nil
}

// StartReindex begins asynchronous reindexing of an index with its current
// analyzer configuration and returns the tracking job ID.
func (e *Engine) StartReindex(indexName string) (string, error) {
	e.mu.RLock()
	instance, exists := e.indexes[indexName]
	e.mu.RUnlock()

	if !exists {
		return "", internalErrors.NewIndexNotFoundError(indexName)
	}

	jobID := e.jobManager.CreateJob(model.JobTypeReindex, indexName, nil)
	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		e.jobManager.UpdateJobProgress(jobID, 0, instance.DocumentStore.Count(), "rebuilding postings")
		if err := instance.Reindex(ctx); err != nil {
			return err
		}
		return e.persistInstance(instance)
	})
	if err != nil {
		return "", err
	}
	return jobID, nil
}

// GetJob retrieves the status of a background job.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns jobs for an index, optionally filtered by status.
func (e *Engine) ListJobs(indexName string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(indexName, status)
}

// CancelJob requests cancellation of a running job.
func (e *Engine) CancelJob(jobID string) error {
	return e.jobManager.CancelJob(jobID)
}

// GetJobMetrics returns aggregate counters for background jobs.
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}
