package providers

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/config"
	"github.com/mizuleaf/callscope/internal/infrastructure/database"
	"github.com/mizuleaf/callscope/internal/infrastructure/gateway"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis creates the redis client used for status signalling.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewZoomGateway constructs the meeting platform client.
func NewZoomGateway(conf config.Zoom) *gateway.ZoomGateway {
	return gateway.NewZoomGateway(conf)
}

// NewTranscriptionGateway constructs the speech-to-text client.
func NewTranscriptionGateway(conf config.Transcription) *gateway.TranscriptionGateway {
	return gateway.NewTranscriptionGateway(conf)
}

// NewAnalysisGateway constructs the AI analysis client.
func NewAnalysisGateway(conf config.Analysis) *gateway.AnalysisGateway {
	return gateway.NewAnalysisGateway(conf)
}

// NewEmailGateway constructs the email delivery client.
func NewEmailGateway(conf config.Email) *gateway.EmailGateway {
	return gateway.NewEmailGateway(conf)
}
