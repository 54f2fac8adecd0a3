package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newsearch/news-search-engine/internal/engine"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/services"
)

// CompactIndexHandler starts asynchronous compaction of an index's posting
// lists and returns the tracking job ID.
func (api *API) CompactIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	jobID, err := api.engine.StartCompaction(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Compaction started for index '" + indexName + "'",
		"job_id":  jobID,
	})
}

// ReindexHandler starts asynchronous reindexing of an index with its current
// analyzer configuration and returns the tracking job ID.
func (api *API) ReindexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	jobID, err := api.engine.StartReindex(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Reindex started for index '" + indexName + "'",
		"job_id":  jobID,
	})
}

// GetJobHandler returns the status of a background job by ID.
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeInternalError, "Job management not supported by this engine")
		return
	}
	job, err := jobManager.GetJob(jobID)
	if err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs for an index, optionally filtered by status.
func (api *API) ListJobsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	statusParam := c.Query("status")

	var statusFilter *model.JobStatus
	if statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeInternalError, "Job management not supported by this engine")
		return
	}
	jobs := jobManager.ListJobs(indexName, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":       jobs,
		"index_name": indexName,
		"total":      len(jobs),
	})
}

// CancelJobHandler requests cancellation of a running job.
func (api *API) CancelJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	concreteEngine, ok := api.engine.(*engine.Engine)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeInternalError, "Job cancellation not supported by this engine")
		return
	}
	if err := concreteEngine.CancelJob(jobID); err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Cancellation requested for job '" + jobID + "'"})
}

// GetJobMetricsHandler returns aggregate counters for background jobs.
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	concreteEngine, ok := api.engine.(*engine.Engine)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeInternalError, "Job metrics not supported by this engine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": concreteEngine.GetJobMetrics()})
}
