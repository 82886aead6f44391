package domain

// WasabiConfig holds the object-store credentials the storefront hands to media
// operations. Field names follow the stored document.
type WasabiConfig struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	Endpoint  string `json:"endpoint"`
}

// SiteConfig is the singleton configuration record of the storefront.
type SiteConfig struct {
	SiteName             string       `json:"siteName"`
	VideoListTitle       string       `json:"videoListTitle"`
	TelegramUsername     string       `json:"telegramUsername"`
	PaypalClientID       string       `json:"paypalClientId"`
	PaypalMeUsername     string       `json:"paypalMeUsername"`
	StripePublishableKey string       `json:"stripePublishableKey"`
	StripeSecretKey      string       `json:"stripeSecretKey"`
	Crypto               []string     `json:"crypto"`
	EmailHost            string       `json:"emailHost"`
	EmailPort            string       `json:"emailPort"`
	EmailSecure          bool         `json:"emailSecure"`
	EmailUser            string       `json:"emailUser"`
	EmailPass            string       `json:"emailPass"`
	EmailFrom            string       `json:"emailFrom"`
	WasabiConfig         WasabiConfig `json:"wasabiConfig"`
}

// DefaultSiteConfig returns the configuration a fresh document starts with.
func DefaultSiteConfig(wasabi WasabiConfig) SiteConfig {
	return SiteConfig{
		SiteName:       "VideosPlus",
		VideoListTitle: "Available Videos",
		Crypto:         []string{},
		EmailHost:      "smtp.gmail.com",
		EmailPort:      "587",
		WasabiConfig:   wasabi,
	}
}

// Public returns a copy safe to serve to anonymous visitors: every secret is blanked.
func (c SiteConfig) Public() SiteConfig {
	out := c
	out.Crypto = append([]string{}, c.Crypto...)
	out.StripeSecretKey = ""
	out.EmailUser = ""
	out.EmailPass = ""
	out.WasabiConfig = WasabiConfig{
		Region:   c.WasabiConfig.Region,
		Bucket:   c.WasabiConfig.Bucket,
		Endpoint: c.WasabiConfig.Endpoint,
	}
	return out
}

// WasabiConfigPatch merges into WasabiConfig field by field.
type WasabiConfigPatch struct {
	AccessKey *string `json:"accessKey,omitempty"`
	SecretKey *string `json:"secretKey,omitempty"`
	Region    *string `json:"region,omitempty"`
	Bucket    *string `json:"bucket,omitempty"`
	Endpoint  *string `json:"endpoint,omitempty" binding:"omitempty,url"`
}

// SiteConfigPatch holds the fields a configuration update may change.
type SiteConfigPatch struct {
	SiteName             *string            `json:"siteName,omitempty" binding:"omitempty,min=1"`
	VideoListTitle       *string            `json:"videoListTitle,omitempty"`
	TelegramUsername     *string            `json:"telegramUsername,omitempty"`
	PaypalClientID       *string            `json:"paypalClientId,omitempty"`
	PaypalMeUsername     *string            `json:"paypalMeUsername,omitempty"`
	StripePublishableKey *string            `json:"stripePublishableKey,omitempty"`
	StripeSecretKey      *string            `json:"stripeSecretKey,omitempty"`
	Crypto               *[]string          `json:"crypto,omitempty"`
	EmailHost            *string            `json:"emailHost,omitempty"`
	EmailPort            *string            `json:"emailPort,omitempty" binding:"omitempty,numeric"`
	EmailSecure          *bool              `json:"emailSecure,omitempty"`
	EmailUser            *string            `json:"emailUser,omitempty"`
	EmailPass            *string            `json:"emailPass,omitempty"`
	EmailFrom            *string            `json:"emailFrom,omitempty" binding:"omitempty,email"`
	WasabiConfig         *WasabiConfigPatch `json:"wasabiConfig,omitempty"`
}

// Apply merges the patch into c.
func (p SiteConfigPatch) Apply(c *SiteConfig) {
	setString(&c.SiteName, p.SiteName)
	setString(&c.VideoListTitle, p.VideoListTitle)
	setString(&c.TelegramUsername, p.TelegramUsername)
	setString(&c.PaypalClientID, p.PaypalClientID)
	setString(&c.PaypalMeUsername, p.PaypalMeUsername)
	setString(&c.StripePublishableKey, p.StripePublishableKey)
	setString(&c.StripeSecretKey, p.StripeSecretKey)
	if p.Crypto != nil {
		c.Crypto = append([]string{}, (*p.Crypto)...)
	}
	setString(&c.EmailHost, p.EmailHost)
	setString(&c.EmailPort, p.EmailPort)
	if p.EmailSecure != nil {
		c.EmailSecure = *p.EmailSecure
	}
	setString(&c.EmailUser, p.EmailUser)
	setString(&c.EmailPass, p.EmailPass)
	setString(&c.EmailFrom, p.EmailFrom)
	if w := p.WasabiConfig; w != nil {
		setString(&c.WasabiConfig.AccessKey, w.AccessKey)
		setString(&c.WasabiConfig.SecretKey, w.SecretKey)
		setString(&c.WasabiConfig.Region, w.Region)
		setString(&c.WasabiConfig.Bucket, w.Bucket)
		setString(&c.WasabiConfig.Endpoint, w.Endpoint)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
