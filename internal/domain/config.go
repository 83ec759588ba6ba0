package domain

// Config is the runtime configuration handed to handlers and services.
type Config struct {
	AppURL      string `yaml:"appUrl"`
	Environment string `yaml:"environment"` // development, production
	CronSecret  string `yaml:"cronSecret"`
}

func (c Config) IsDevelopment() bool {
	return c.Environment != "production"
}
