// Package config loads the service configuration from the process environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record store backends.
const (
	BackendAirtable  = "airtable"
	BackendFirestore = "firestore"
)

// Language model providers.
const (
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
)

// Config holds every setting the functions need. It is built once at startup
// and passed into constructors.
type Config struct {
	Port string

	RecordBackend string

	AirtableAPIKey    string
	AirtableBaseID    string
	AirtableTableName string
	AirtableAPIURL    string

	ProjectID           string
	FirestoreCollection string

	SplitPagesBucket string
	PublicBaseURL    string
	PublicRead       bool

	LLMProvider    string
	VertexAIRegion string
	LLMModel       string
	LLMMaxTokens   int
	OpenAIAPIKey   string
	OpenAIBaseURL  string

	WorkflowID       string
	WorkflowLocation string

	HTTPTimeout time.Duration

	Fields FieldNames
}

// FieldNames are the record column names the orchestrators read and write.
type FieldNames struct {
	Attachment string
	TicketText string
	PageNumber string
	PageID     string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not read .env file, continuing with process environment.", "error", err)
	}

	cfg := &Config{
		Port: GetEnv("PORT", "8080"),

		RecordBackend: strings.ToLower(GetEnv("RECORD_BACKEND", BackendAirtable)),

		AirtableAPIKey:    GetEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:    GetEnv("AIRTABLE_BASE_ID", ""),
		AirtableTableName: GetEnv("AIRTABLE_TABLE_NAME", ""),
		AirtableAPIURL:    GetEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),

		ProjectID:           GetEnv("PROJECT_ID", ""),
		FirestoreCollection: GetEnv("FIRESTORE_COLLECTION", "tickets"),

		SplitPagesBucket: GetEnv("SPLIT_PAGES_BUCKET", ""),
		PublicBaseURL:    GetEnv("PUBLIC_BASE_URL", ""),

		LLMProvider:    strings.ToLower(GetEnv("LLM_PROVIDER", ProviderVertex)),
		VertexAIRegion: GetEnv("VERTEX_AI_REGION", "us-central1"),
		LLMModel:       GetEnv("LLM_MODEL", ""),
		OpenAIAPIKey:   GetEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		WorkflowID:       GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: GetEnv("WORKFLOW_LOCATION", "us-central1"),

		Fields: FieldNames{
			Attachment: GetEnv("ATTACHMENT_FIELD", "Attachment"),
			TicketText: GetEnv("TICKET_TEXT_FIELD", "Ticket Text"),
			PageNumber: GetEnv("PAGE_NUMBER_FIELD", "Page Number"),
			PageID:     GetEnv("PAGE_ID_FIELD", "Page UUID"),
		},
	}

	var err error
	if cfg.PublicRead, err = getEnvAsBool("PUBLIC_READ", true); err != nil {
		return nil, err
	}
	if cfg.LLMMaxTokens, err = getEnvAsInt("LLM_MAX_TOKENS", 700); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.RecordBackend {
	case BackendAirtable:
		if c.AirtableAPIKey == "" || c.AirtableBaseID == "" || c.AirtableTableName == "" {
			return fmt.Errorf("AIRTABLE_API_KEY, AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME must be set")
		}
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown RECORD_BACKEND %q", c.RecordBackend)
	}

	switch c.LLMProvider {
	case ProviderVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the vertex provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable must be set")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.SplitPagesBucket == "" {
		return fmt.Errorf("SPLIT_PAGES_BUCKET environment variable must be set")
	}
	if c.WorkflowID != "" && c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set when WORKFLOW_ID is set")
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens)
	}
	return nil
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-1.5-pro"
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
