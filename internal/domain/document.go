package domain

// Document is the single persisted unit: every collection and the site configuration
// are read and written together.
type Document struct {
	Videos     []Video     `json:"videos"`
	Users      []User      `json:"users"`
	Sessions   []Session   `json:"sessions"`
	SiteConfig *SiteConfig `json:"siteConfig"`
}

// NewDocument returns an empty document with non-nil collections and no site config.
func NewDocument() *Document {
	return &Document{
		Videos:   []Video{},
		Users:    []User{},
		Sessions: []Session{},
	}
}

// Normalize replaces nil collections with empty ones. A nil collection and an empty
// one mean the same thing.
func (d *Document) Normalize() {
	if d.Videos == nil {
		d.Videos = []Video{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	if d.SiteConfig != nil && d.SiteConfig.Crypto == nil {
		d.SiteConfig.Crypto = []string{}
	}
}

// Counts is the per-collection record count of a document.
type Counts struct {
	Videos   int `json:"videos"`
	Users    int `json:"users"`
	Sessions int `json:"sessions"`
}

func (d *Document) Counts() Counts {
	return Counts{Videos: len(d.Videos), Users: len(d.Users), Sessions: len(d.Sessions)}
}

// Defaults describes the document a backend hands out when nothing is stored yet.
type Defaults struct {
	// Admin is seeded into the users collection when non-nil.
	Admin *User
	// Wasabi is copied into the default site configuration.
	Wasabi WasabiConfig
}

// NewDocument builds the seeded default document. createdAt stamps the seeded admin.
func (d Defaults) NewDocument(createdAt string) *Document {
	doc := NewDocument()
	if d.Admin != nil {
		admin := *d.Admin
		if admin.CreatedAt == "" {
			admin.CreatedAt = createdAt
		}
		if admin.Role == "" {
			admin.Role = RoleAdmin
		}
		doc.Users = append(doc.Users, admin)
	}
	cfg := DefaultSiteConfig(d.Wasabi)
	doc.SiteConfig = &cfg
	return doc
}

// SiteConfigOrDefault returns the stored configuration, or the default one when the
// document carries none.
func (d Defaults) SiteConfigOrDefault(doc *Document) SiteConfig {
	if doc.SiteConfig != nil {
		return *doc.SiteConfig
	}
	return DefaultSiteConfig(d.Wasabi)
}
