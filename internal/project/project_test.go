package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrafold/siteplan/internal/model"
)

func testTemplate(name string) model.SiteTemplate {
	boundary := []orb.Point{{31.20, 30.00}, {31.21, 30.00}, {31.21, 30.01}}
	return model.NewSiteTemplate(name, "test site", boundary, nil, model.DefaultConfig())
}

func TestAppConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := model.DefaultAppConfig()
	cfg.Defaults.RoadWidth = 14
	cfg.AddRecentSite("site.geojson")
	cfg.LastExportDir = "/tmp/exports"

	require.NoError(t, SaveAppConfig(path, cfg))

	loaded, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	loaded, err := LoadAppConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppConfig(), loaded)
}

func TestLoadAppConfigCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := LoadAppConfig(path)
	assert.Error(t, err)
}

func TestLoadAppConfigNilRecents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"defaults":{},"last_export_dir":""}`), 0644))

	loaded, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.NotNil(t, loaded.RecentSites)
}

func TestSitesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")

	store := model.NewSiteStore()
	store.Sites = append(store.Sites, testTemplate("Riverside"))
	require.NoError(t, SaveSites(path, store))

	loaded, err := LoadSites(path)
	require.NoError(t, err)
	require.Len(t, loaded.Sites, 1)
	assert.Equal(t, "Riverside", loaded.Sites[0].Name)
	assert.Equal(t, store.Sites[0].Boundary, loaded.Sites[0].Boundary)
}

func TestLoadSitesCreatesMissingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")

	store, err := LoadSites(path)
	require.NoError(t, err)
	assert.Empty(t, store.Sites)

	// The empty store was written out.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestImportSitesMergesAndSkipsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")

	shared := testTemplate("Shared")
	existing := model.SiteStore{Sites: []model.SiteTemplate{shared, testTemplate("Local")}}
	incoming := model.SiteStore{Sites: []model.SiteTemplate{shared, testTemplate("Remote")}}
	require.NoError(t, ExportSites(path, incoming))

	merged, err := ImportSites(path, existing)
	require.NoError(t, err)
	require.Len(t, merged.Sites, 3)

	names := map[string]int{}
	for _, s := range merged.Sites {
		names[s.Name]++
	}
	assert.Equal(t, 1, names["Shared"])
	assert.Equal(t, 1, names["Local"])
	assert.Equal(t, 1, names["Remote"])
}

func TestImportSitesMissingFile(t *testing.T) {
	existing := model.SiteStore{Sites: []model.SiteTemplate{testTemplate("Local")}}
	merged, err := ImportSites(filepath.Join(t.TempDir(), "absent.json"), existing)
	assert.Error(t, err)
	assert.Len(t, merged.Sites, 1)
}

func TestLoadTemplatesMissingFileSeedsPresets(t *testing.T) {
	store, err := LoadTemplates(filepath.Join(t.TempDir(), "templates.json"))
	require.NoError(t, err)
	assert.Len(t, store.Templates, len(model.BuiltinPresets()))
}

func TestTemplatesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")

	store := model.NewTemplateStore()
	store.Templates = append(store.Templates, testTemplate("Custom"))
	require.NoError(t, SaveTemplates(path, store))

	loaded, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Templates, len(store.Templates))
	assert.Equal(t, "Custom", loaded.Templates[len(loaded.Templates)-1].Name)
}

func TestBackupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup", "all.json")

	cfg := model.DefaultAppConfig()
	cfg.AddRecentSite("recent.csv")
	sites := model.SiteStore{Sites: []model.SiteTemplate{testTemplate("Riverside")}}
	templates := model.NewTemplateStore()

	require.NoError(t, ExportAllData(path, cfg, sites, templates))

	backup, err := ImportAllData(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", backup.Version)
	assert.NotEmpty(t, backup.CreatedAt)
	assert.Equal(t, cfg.RecentSites, backup.Config.RecentSites)
	require.Len(t, backup.Sites.Sites, 1)
	assert.Equal(t, "Riverside", backup.Sites.Sites[0].Name)
	assert.Len(t, backup.Templates.Templates, len(templates.Templates))
}

func TestImportAllDataRejectsMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config":{},"sites":{},"templates":{}}`), 0644))

	_, err := ImportAllData(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestImportAllDataNilGuards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1.0.0"}`), 0644))

	backup, err := ImportAllData(path)
	require.NoError(t, err)
	assert.NotNil(t, backup.Config.RecentSites)
	assert.NotNil(t, backup.Sites.Sites)
	assert.NotNil(t, backup.Templates.Templates)
}
