package cooldown

// Config holds cooldown machine configuration
type Config struct {
	// DevMode bypasses the cooldown timer when true. The daily quota still applies.
	DevMode bool

	// MaxDaily maps reward types to their daily quota
	// If not specified, DefaultMaxDaily is used
	MaxDaily map[string]int
}

// GetMaxDaily returns the daily quota for a reward type
func (c *Config) GetMaxDaily(rewardType string) int {
	if c.MaxDaily != nil {
		if limit, ok := c.MaxDaily[rewardType]; ok && limit > 0 {
			return limit
		}
	}
	return DefaultMaxDaily
}
