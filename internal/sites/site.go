package sites

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SiteNotFoundError represents an error when a site is not found
type SiteNotFoundError struct {
	SiteURL string
}

func (e *SiteNotFoundError) Error() string {
	return fmt.Sprintf("site not found: %s", e.SiteURL)
}

// NewSiteNotFoundError creates a new SiteNotFoundError
func NewSiteNotFoundError(siteURL string) *SiteNotFoundError {
	return &SiteNotFoundError{SiteURL: siteURL}
}

// Site is a property under analysis: a Search Console site plus its GA4
// property. SiteURL uses Search Console notation, either a URL prefix
// ("https://example.com/") or a domain property ("sc-domain:example.com").
type Site struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	SiteURL       string    `gorm:"uniqueIndex;not null" json:"site_url"`
	GA4PropertyID string    `json:"ga4_property_id"`
	AutoRefresh   bool      `gorm:"default:false" json:"auto_refresh"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidateSiteURL checks the Search Console property notation.
func ValidateSiteURL(siteURL string) error {
	if strings.HasPrefix(siteURL, "sc-domain:") {
		if len(siteURL) == len("sc-domain:") {
			return fmt.Errorf("domain property is missing the domain")
		}
		return nil
	}
	if strings.HasPrefix(siteURL, "http://") || strings.HasPrefix(siteURL, "https://") {
		return nil
	}
	return fmt.Errorf("site url must be a URL prefix or an sc-domain: property, got %q", siteURL)
}

// CreateSite validates and stores a new site.
func CreateSite(db *gorm.DB, site *Site) error {
	if strings.TrimSpace(site.Name) == "" {
		return fmt.Errorf("site name is required")
	}
	if err := ValidateSiteURL(site.SiteURL); err != nil {
		return err
	}
	site.CreatedAt = time.Now().UTC()
	site.UpdatedAt = site.CreatedAt
	if err := db.Create(site).Error; err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// GetSiteByID retrieves a site by primary key.
func GetSiteByID(db *gorm.DB, id uint) (*Site, error) {
	var site Site
	if err := db.First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// GetSiteByURL retrieves a site by its Search Console property URL.
func GetSiteByURL(db *gorm.DB, siteURL string) (*Site, error) {
	var site Site
	if err := db.Where("site_url = ?", siteURL).First(&site).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewSiteNotFoundError(siteURL)
		}
		return nil, fmt.Errorf("unexpected error querying site: %w", err)
	}
	return &site, nil
}

// ListSites returns all sites ordered by creation time.
func ListSites(db *gorm.DB) ([]Site, error) {
	var sites []Site
	if err := db.Order("created_at ASC").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// ListAutoRefreshSites returns sites enrolled in scheduled analysis refresh.
func ListAutoRefreshSites(db *gorm.DB) ([]Site, error) {
	var sites []Site
	if err := db.Where("auto_refresh = ?", true).Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list auto-refresh sites: %w", err)
	}
	return sites, nil
}

// UpdateSite persists changes to name, GA4 property and refresh enrollment.
func UpdateSite(db *gorm.DB, site *Site) error {
	site.UpdatedAt = time.Now().UTC()
	if err := db.Model(&Site{}).Where("id = ?", site.ID).Updates(map[string]interface{}{
		"name":            site.Name,
		"ga4_property_id": site.GA4PropertyID,
		"auto_refresh":    site.AutoRefresh,
		"updated_at":      site.UpdatedAt,
	}).Error; err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}
	return nil
}

// DeleteSite removes a site and its saved analysis runs.
func DeleteSite(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM analysis_runs WHERE site_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete site runs: %w", err)
		}
		if err := tx.Delete(&Site{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete site: %w", err)
		}
		return nil
	})
}

// GetSitesForSelector returns a list of sites formatted for API consumers.
func GetSitesForSelector(db *gorm.DB) ([]map[string]interface{}, error) {
	sites, err := ListSites(db)
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(sites))
	for _, site := range sites {
		result = append(result, map[string]interface{}{
			"id":       site.ID,
			"name":     site.Name,
			"site_url": site.SiteURL,
		})
	}
	return result, nil
}
