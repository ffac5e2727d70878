package model

// AppConfig holds user-level application settings persisted between runs.
type AppConfig struct {
	Defaults      Config   `json:"defaults"`       // parameters new sites start from
	RecentSites   []string `json:"recent_sites"`   // most recent first, capped
	LastExportDir string   `json:"last_export_dir"`
}

// maxRecentSites caps the recent-sites list.
const maxRecentSites = 10

// DefaultAppConfig returns the configuration used when no config file exists.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Defaults:    DefaultConfig(),
		RecentSites: []string{},
	}
}

// AddRecentSite pushes a path to the front of the recent list, removing any
// earlier occurrence and trimming the list to its cap.
func (c *AppConfig) AddRecentSite(path string) {
	out := make([]string, 0, len(c.RecentSites)+1)
	out = append(out, path)
	for _, p := range c.RecentSites {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > maxRecentSites {
		out = out[:maxRecentSites]
	}
	c.RecentSites = out
}

// SiteStore is the persisted collection of saved site definitions.
type SiteStore struct {
	Sites []SiteTemplate `json:"sites"`
}

// NewSiteStore returns an empty store.
func NewSiteStore() SiteStore {
	return SiteStore{Sites: []SiteTemplate{}}
}

// TemplateStore is the persisted collection of reusable parameter templates.
type TemplateStore struct {
	Templates []SiteTemplate `json:"templates"`
}

// NewTemplateStore returns a store seeded with the builtin presets.
func NewTemplateStore() TemplateStore {
	return TemplateStore{Templates: BuiltinPresets()}
}
