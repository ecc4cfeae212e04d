package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the service configuration loaded from the environment.
type Config struct {
	LogLevel string
	Port     string
	RunLocal bool

	DraftsTable       string `env:"DRAFTS_TABLE" validate:"required"`
	ProductsTable     string `env:"PRODUCTS_TABLE" validate:"required"`
	CommitsTable      string `env:"COMMITS_TABLE" validate:"required"`
	DescriptionsQueue string // empty disables the DescriptionReady hand-off
	MetricsNamespace  string
	DisableMetrics    bool

	AI AIConfig
}

// AIConfig holds the credentials for the vision and text-generation clients.
// Only the API process needs it; the commit worker never calls the models.
type AIConfig struct {
	GCPServiceAccount string `env:"BASE64_ENCODED_GCP_SERVICE_ACCOUNT" validate:"required,base64"`
	APIKey            string `env:"GENERATIVE_AI_API_KEY" validate:"required"`
	Model             string `env:"GEMINI_MODEL" validate:"required"`
}

// Load reads .env (if present) and the process environment, then validates
// the store settings. Call RequireAI before building the AI clients.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "8080"),
		RunLocal:          getEnv("RUN_LOCAL", "") == "true",
		DraftsTable:       getEnv("DRAFTS_TABLE", "product-description-drafts"),
		ProductsTable:     getEnv("PRODUCTS_TABLE", "products"),
		CommitsTable:      getEnv("COMMITS_TABLE", "description-commits"),
		DescriptionsQueue: getEnv("DESCRIPTIONS_QUEUE_URL", ""),
		MetricsNamespace:  getEnv("METRICS_NAMESPACE", "ProductDescriber"),
		DisableMetrics:    getEnv("DISABLE_METRICS", "") == "true",
		AI: AIConfig{
			GCPServiceAccount: os.Getenv("BASE64_ENCODED_GCP_SERVICE_ACCOUNT"),
			APIKey:            os.Getenv("GENERATIVE_AI_API_KEY"),
			Model:             os.Getenv("GEMINI_MODEL"),
		},
	}

	if err := check(*cfg, validatorv10.New().StructExcept(cfg, "AI")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireAI validates the AI credentials.
func (c *Config) RequireAI() error {
	return check(c.AI, validatorv10.New().Struct(c.AI))
}

// check turns validator errors into a message naming the offending variables.
func check(v interface{}, err error) error {
	if err == nil {
		return nil
	}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	names := envNames(v)
	invalid := make([]string, 0, len(ve))
	for _, fe := range ve {
		invalid = append(invalid, names[fe.StructField()])
	}
	sort.Strings(invalid)
	return fmt.Errorf("missing or invalid environment variables: %s", strings.Join(invalid, ", "))
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}
