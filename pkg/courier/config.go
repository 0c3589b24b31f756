package courier

// Config represents the configuration for the courier API client
type Config struct {
	// BaseURL is the courier API base URL
	BaseURL string

	// APIToken is the courier API token for authentication
	APIToken string

	// OriginPin is the warehouse pincode shipments are priced from
	OriginPin string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.OriginPin == "" {
		return ErrInvalidRequest
	}
	return nil
}
