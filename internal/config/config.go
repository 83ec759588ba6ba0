package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/mizuleaf/callscope/internal/domain"
)

type Config struct {
	App           domain.Config `yaml:"app"`
	Server        Server        `yaml:"server"`
	Zoom          Zoom          `yaml:"zoom"`
	Transcription Transcription `yaml:"transcription"`
	Analysis      Analysis      `yaml:"analysis"`
	Email         Email         `yaml:"email"`
	Media         Media         `yaml:"media"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Zoom struct {
	TokenEndpoint string `yaml:"tokenEndpoint"`
	APIBase       string `yaml:"apiBase"`
}

type Transcription struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type Analysis struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type Email struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
	From     string `yaml:"from"`
}

type Media struct {
	TempDir    string `yaml:"tempDir"`
	StorageDir string `yaml:"storageDir"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	applyDefaults(&config)

	return config, nil
}

func applyDefaults(c *Config) {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8000"
	}
	if c.Zoom.TokenEndpoint == "" {
		c.Zoom.TokenEndpoint = "https://zoom.us/oauth/token"
	}
	if c.Zoom.APIBase == "" {
		c.Zoom.APIBase = "https://api.zoom.us/v2"
	}
	if c.Transcription.Endpoint == "" {
		c.Transcription.Endpoint = "https://api.groq.com/openai/v1/audio/transcriptions"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-large-v3"
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "ja"
	}
	if c.Analysis.Endpoint == "" {
		c.Analysis.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Analysis.Model == "" {
		c.Analysis.Model = "gemini-2.0-flash"
	}
	if c.Email.Endpoint == "" {
		c.Email.Endpoint = "https://api.resend.com/emails"
	}
	if c.Media.TempDir == "" {
		c.Media.TempDir = os.TempDir()
	}
	if c.Media.StorageDir == "" {
		c.Media.StorageDir = "./storage"
	}
}
