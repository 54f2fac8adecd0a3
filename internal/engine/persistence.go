package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/internal/persistence"
	"github.com/newsearch/news-search-engine/store"
)

const (
	dataDirPerm       = 0750
	settingsFile      = "settings.gob"
	invertedIndexFile = "inverted_index.gob"
	documentStoreFile = "document_store.gob"
)

// loadIndexesFromDisk loads all indexes from the data directory. Missing or
// corrupt component files degrade to empty structures with a logged warning;
// a broken settings file skips the index entirely.
func (e *Engine) loadIndexesFromDisk() {
	log.Printf("Loading indexes from disk: %s", e.dataDir)

	if err := os.MkdirAll(e.dataDir, dataDirPerm); err != nil {
		log.Printf("Warning: Could not create data directory %s: %v. Proceeding without persistence for new indexes if loading fails.", e.dataDir, err)
	}

	items, err := os.ReadDir(e.dataDir)
	if err != nil {
		log.Printf("Warning: Failed to read data directory %s: %v. No indexes loaded.", e.dataDir, err)
		return
	}

	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		indexName := item.Name()
		indexPath := filepath.Join(e.dataDir, indexName)
		log.Printf("Attempting to load index: %s", indexName)

		var settings config.IndexSettings
		settingsPath := filepath.Join(indexPath, settingsFile)
		if err := persistence.LoadGob(settingsPath, &settings); err != nil {
			log.Printf("Warning: Failed to load settings for index %s from %s: %v. Skipping this index.", indexName, settingsPath, err)
			continue
		}

		if settings.Name != indexName {
			log.Printf("Warning: Index name in settings ('%s') does not match directory name ('%s') for path %s. Skipping this index.", settings.Name, indexName, indexPath)
			continue
		}
		settings.ApplyDefaults()

		docStore := store.NewDocumentStore()
		dsPath := filepath.Join(indexPath, documentStoreFile)
		if err := persistence.LoadGob(dsPath, docStore); err != nil {
			if err == os.ErrNotExist {
				log.Printf("Info: Document store file %s not found for index %s. Initializing empty store.", dsPath, indexName)
			} else {
				log.Printf("Warning: Failed to load document store for index %s from %s: %v. Proceeding with empty store.", indexName, dsPath, err)
			}
		}

		invIndex := index.NewInvertedIndex(&settings)
		iiPath := filepath.Join(indexPath, invertedIndexFile)
		if err := persistence.LoadGob(iiPath, invIndex); err != nil {
			if err == os.ErrNotExist {
				log.Printf("Info: Inverted index file %s not found for index %s. Initializing empty index.", iiPath, indexName)
			} else {
				log.Printf("Warning: Failed to load inverted index for index %s from %s: %v. Proceeding with empty index.", indexName, iiPath, err)
			}
		}
		// The decoded settings pointer wins over whatever the gob carried.
		invIndex.Settings = &settings

		instance, err := newIndexInstanceFromLoaded(&settings, invIndex, docStore)
		if err != nil {
			log.Printf("Error creating services for loaded index %s: %v. Skipping.", indexName, err)
			continue
		}

		e.indexes[indexName] = instance
		log.Printf("Successfully loaded index: %s", indexName)
	}
}

// PersistIndexData saves an index's settings, inverted index, and document
// store to its directory under the data dir.
func (e *Engine) PersistIndexData(indexName string) error {
	e.mu.RLock()
	instance, exists := e.indexes[indexName]
	e.mu.RUnlock()

	if !exists {
		return internalErrors.NewIndexNotFoundError(indexName)
	}
	return e.persistInstance(instance)
}

func (e *Engine) persistInstance(instance *IndexInstance) error {
	indexPath := filepath.Join(e.dataDir, instance.settings.Name)
	if err := os.MkdirAll(indexPath, dataDirPerm); err != nil {
		return fmt.Errorf("failed to create directory for index %s: %w", instance.settings.Name, err)
	}

	if err := persistence.SaveGob(filepath.Join(indexPath, settingsFile), *instance.settings); err != nil {
		return fmt.Errorf("failed to save settings for index %s: %w", instance.settings.Name, err)
	}
	if err := persistence.SaveGob(filepath.Join(indexPath, invertedIndexFile), instance.InvertedIndex); err != nil {
		return fmt.Errorf("failed to save inverted index for %s: %w", instance.settings.Name, err)
	}
	if err := persistence.SaveGob(filepath.Join(indexPath, documentStoreFile), instance.DocumentStore); err != nil {
		return fmt.Errorf("failed to save document store for %s: %w", instance.settings.Name, err)
	}
	return nil
}
