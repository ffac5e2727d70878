// Package project handles persistence of user data: saved site definitions,
// parameter templates, application configuration and full-data backups. All
// stores are JSON files under ~/.siteplan/.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/terrafold/siteplan/internal/model"
)

// DefaultSitesPath returns the default file path for the saved-sites store.
// This is located at ~/.siteplan/sites.json.
func DefaultSitesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".siteplan", "sites.json"), nil
}

// SaveSites writes the site store to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveSites(path string, store model.SiteStore) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSites reads the site store from the specified JSON file.
// If the file does not exist, it returns an empty store and saves it.
func LoadSites(path string) (model.SiteStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			store := model.NewSiteStore()
			if saveErr := SaveSites(path, store); saveErr != nil {
				return store, saveErr
			}
			return store, nil
		}
		return model.SiteStore{}, err
	}
	var store model.SiteStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.SiteStore{}, err
	}
	if store.Sites == nil {
		store.Sites = []model.SiteTemplate{}
	}
	return store, nil
}

// LoadOrCreateSites loads the site store from the default path.
// If the file does not exist, it creates an empty one.
func LoadOrCreateSites() (model.SiteStore, string, error) {
	path, err := DefaultSitesPath()
	if err != nil {
		return model.NewSiteStore(), "", err
	}
	store, err := LoadSites(path)
	return store, path, err
}

// ExportSites exports the site store to a user-specified JSON file.
func ExportSites(path string, store model.SiteStore) error {
	return SaveSites(path, store)
}

// ImportSites imports a site store from a user-specified JSON file,
// merging it with the existing store. Duplicate IDs are skipped.
func ImportSites(path string, existing model.SiteStore) (model.SiteStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.SiteStore
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Sites))
	for _, s := range existing.Sites {
		ids[s.ID] = true
	}
	for _, s := range imported.Sites {
		if !ids[s.ID] {
			existing.Sites = append(existing.Sites, s)
			ids[s.ID] = true
		}
	}

	return existing, nil
}
