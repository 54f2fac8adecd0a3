// Package engine orchestrates multiple search indexes: lifecycle, settings,
// persistence, and background maintenance jobs.
package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/newsearch/news-search-engine/config"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/internal/jobs"
	"github.com/newsearch/news-search-engine/services"
)

const maxConcurrentJobs = 2

// Engine manages multiple search indexes.
// It implements the services.IndexManagerWithAsyncOps interface.
type Engine struct {
	mu         sync.RWMutex
	indexes    map[string]*IndexInstance
	dataDir    string
	jobManager *jobs.Manager
}

// NewEngine creates a new search engine orchestrator and loads any indexes
// persisted under dataDir.
func NewEngine(dataDir string) *Engine {
	eng := &Engine{
		indexes:    make(map[string]*IndexInstance),
		dataDir:    dataDir,
		jobManager: jobs.NewManager(maxConcurrentJobs),
	}
	eng.jobManager.Start()
	eng.loadIndexesFromDisk()
	return eng
}

// Close stops background jobs. Index data is persisted explicitly via
// PersistIndexData, not here.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

// CreateIndex creates a new index with the given settings and persists it.
// The analyzer fingerprint is captured here: it records the configuration the
// index contents are built with.
func (e *Engine) CreateIndex(settings config.IndexSettings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings.ApplyDefaults()
	if conflicts := settings.Validate(); len(conflicts) > 0 {
		return internalErrors.NewValidationError("settings", strings.Join(conflicts, "; "))
	}
	if _, exists := e.indexes[settings.Name]; exists {
		return internalErrors.NewIndexAlreadyExistsError(settings.Name)
	}

	settings.AnalyzerFingerprint = settings.Analyzer.Fingerprint()

	instance, err := NewIndexInstance(settings)
	if err != nil {
		return fmt.Errorf("failed to create new index instance for '%s': %w", settings.Name, err)
	}

	if err := e.persistInstance(instance); err != nil {
		return err
	}

	e.indexes[settings.Name] = instance
	log.Printf("Index '%s' created and persisted.", settings.Name)
	return nil
}

// GetIndex retrieves an index by its name.
func (e *Engine) GetIndex(name string) (services.IndexAccessor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return nil, internalErrors.NewIndexNotFoundError(name)
	}
	return instance, nil
}

// GetIndexSettings retrieves the settings for a specific index.
func (e *Engine) GetIndexSettings(name string) (config.IndexSettings, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return config.IndexSettings{}, internalErrors.NewIndexNotFoundError(name)
	}
	return *instance.settings, nil // Return a copy
}

// UpdateIndexSettings replaces an index's settings. Changing the analyzer
// configuration does NOT rewrite existing postings: the previously captured
// fingerprint is kept, so searches warn about the mismatch until a reindex
// runs. Use StartReindex to bring postings in line with the new analyzer.
func (e *Engine) UpdateIndexSettings(name string, newSettings config.IndexSettings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	instance, exists := e.indexes[name]
	if !exists {
		return internalErrors.NewIndexNotFoundError(name)
	}

	newSettings.Name = name // the name is the identity, not updatable here
	newSettings.ApplyDefaults()
	if conflicts := newSettings.Validate(); len(conflicts) > 0 {
		return internalErrors.NewValidationError("settings", strings.Join(conflicts, "; "))
	}

	// Preserve the fingerprint of the configuration that actually built the
	// index contents.
	indexedFingerprint := instance.settings.AnalyzerFingerprint
	newSettings.AnalyzerFingerprint = indexedFingerprint

	*instance.settings = newSettings
	if err := instance.rebuildServices(); err != nil {
		return fmt.Errorf("failed to rebuild services for index '%s': %w", name, err)
	}

	if newSettings.Analyzer.Fingerprint() != indexedFingerprint {
		log.Printf("Warning: Analyzer configuration for index '%s' changed without reindex; searches will report an analyzer mismatch until a reindex completes.", name)
	}

	if err := e.persistInstance(instance); err != nil {
		return err
	}
	log.Printf("Settings for index '%s' updated.", name)
	return nil
}

// RenameIndex renames an index and moves its on-disk directory.
func (e *Engine) RenameIndex(oldName, newName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if oldName == newName {
		return internalErrors.NewSameNameError(newName)
	}
	instance, exists := e.indexes[oldName]
	if !exists {
		return internalErrors.NewIndexNotFoundError(oldName)
	}
	if _, exists := e.indexes[newName]; exists {
		return internalErrors.NewIndexAlreadyExistsError(newName)
	}
	if strings.TrimSpace(newName) == "" {
		return internalErrors.NewValidationError("name", "index name cannot be empty or whitespace-only")
	}

	oldPath := filepath.Join(e.dataDir, oldName)
	newPath := filepath.Join(e.dataDir, newName)
	if _, err := os.Stat(oldPath); err == nil {
		if err := os.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("failed to move index directory from %s to %s: %w", oldPath, newPath, err)
		}
	}

	instance.settings.Name = newName
	delete(e.indexes, oldName)
	e.indexes[newName] = instance

	if err := e.persistInstance(instance); err != nil {
		return err
	}
	log.Printf("Index '%s' renamed to '%s'.", oldName, newName)
	return nil
}

// DeleteIndex removes an index from memory and deletes its data directory.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[name]; !exists {
		return internalErrors.NewIndexNotFoundError(name)
	}
	delete(e.indexes, name)

	indexPath := filepath.Join(e.dataDir, name)
	if err := os.RemoveAll(indexPath); err != nil {
		return fmt.Errorf("failed to remove data directory for index %s: %w", name, err)
	}
	log.Printf("Index '%s' deleted.", name)
	return nil
}

// ListIndexes returns the names of all loaded indexes.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	return names
}

// GetIndexStats returns size counters for one index.
func (e *Engine) GetIndexStats(name string) (Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return Stats{}, internalErrors.NewIndexNotFoundError(name)
	}
	return instance.Stats(), nil
}
