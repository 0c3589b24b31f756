package phonepe

// Config represents the configuration for the PhonePe PG client
type Config struct {
	// BaseURL is the PhonePe API base URL
	BaseURL string

	// MerchantID is the registered merchant identifier
	MerchantID string

	// SaltKey signs request payloads (X-VERIFY checksum)
	SaltKey string

	// SaltIndex selects the active salt key
	SaltIndex string

	// RedirectURL is where the payment page sends the user afterwards
	RedirectURL string

	// CallbackURL receives the server-to-server payment result
	CallbackURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.MerchantID == "" {
		return ErrInvalidRequest
	}
	if c.SaltKey == "" {
		return ErrInvalidRequest
	}
	if c.RedirectURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
