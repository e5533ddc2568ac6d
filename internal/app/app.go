package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"blogclient/internal/log"
	"blogclient/internal/token"
)

type Config struct {
	Addr           string
	APIBaseURL     string
	TokenPath      string
	RequestTimeout time.Duration
	Env            string
}

// LoadConfig reads .env (if present), then the environment, then an
// optional YAML file named by BLOGCLIENT_CONFIG with overrides.
// API_BASE_URL es obligatorio en producción; en desarrollo cae al
// backend local, igual que hacía el cliente original.
func LoadConfig() Config {
	_ = godotenv.Load()

	env := getenv("ENV", "development")
	apiURL := getenv("API_BASE_URL", "")
	if apiURL == "" {
		if env != "development" {
			log.Error.Fatalln("API_BASE_URL is required outside development")
		}
		apiURL = "http://localhost:3001"
	}

	tokenPath := getenv("TOKEN_PATH", "")
	if tokenPath == "" {
		p, err := token.DefaultPath()
		Must(err)
		tokenPath = p
	}

	secs, err := strconv.Atoi(getenv("REQUEST_TIMEOUT_SECONDS", "10"))
	if err != nil || secs <= 0 {
		secs = 10
	}

	cfg := Config{
		Addr:           getenv("ADDR", ":8080"),
		APIBaseURL:     apiURL,
		TokenPath:      tokenPath,
		RequestTimeout: time.Duration(secs) * time.Second,
		Env:            env,
	}

	if path := os.Getenv("BLOGCLIENT_CONFIG"); path != "" {
		Must(applyFile(&cfg, path))
	}
	return cfg
}

// fileConfig is the YAML override shape; empty fields keep the value
// resolved from the environment.
type fileConfig struct {
	Addr           string `yaml:"addr"`
	APIBaseURL     string `yaml:"api_base_url"`
	TokenPath      string `yaml:"token_path"`
	RequestTimeout string `yaml:"request_timeout"`
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return err
	}
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.TokenPath != "" {
		cfg.TokenPath = fc.TokenPath
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func Must(err error) {
	if err != nil {
		log.Error.Fatalln(err)
	}
}
