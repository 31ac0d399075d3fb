package domain

// SiteRepository defines the interface for managing site-level settings.
// It provides methods to interact with persistent site data, such as the
// site title and the navigation links rendered in every layout.
type SiteRepository interface {
	// GetSetting retrieves a single site setting by key.
	// It returns an error if the key has never been set.
	GetSetting(key string) (string, error)

	// SetSetting updates a single site setting, creating it if missing.
	SetSetting(key string, value string) error

	// GetSettings retrieves all site settings as a key-value map.
	GetSettings() (map[string]string, error)
}

// Well-known site setting keys.
const (
	SettingSiteTitle    = "site.title"   // Title shown in layouts and feeds.
	SettingSiteURL      = "site.url"     // Canonical base URL of the site.
	SettingSiteTagline  = "site.tagline" // Short description used in feeds.
	SettingFeedPageSize = "feed.size"    // Number of entries in the RSS feed.
	SettingPageSize     = "index.size"   // Number of pages per index listing.
)
