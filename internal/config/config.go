package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        int
	Environment string
	CORSOrigins []string
	Database    DatabaseConfig
	HubSpot     HubSpotConfig
	Salesforce  SalesforceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type         string // postgres or sqlite
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// HubSpotConfig holds the HubSpot OAuth app settings
type HubSpotConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       string
}

// SalesforceConfig holds the Salesforce connected-app settings
type SalesforceConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIVersion   string // e.g. "v58.0", used in every REST path segment
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "production")

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: env,
		CORSOrigins: loadCORSOrigins(env),
		Database: DatabaseConfig{
			Type:         getEnv("DATABASE_TYPE", "postgres"),
			DSN:          getEnv("DATABASE_DSN", buildPostgresDSN()),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		HubSpot: HubSpotConfig{
			ClientID:     os.Getenv("HUBSPOT_CLIENT_ID"),
			ClientSecret: os.Getenv("HUBSPOT_CLIENT_SECRET"),
			RedirectURI:  getEnv("HUBSPOT_REDIRECT_URI", defaultRedirectURI("hubspot")),
			Scopes:       getEnv("HUBSPOT_SCOPES", "crm.objects.contacts.read crm.objects.contacts.write crm.objects.companies.read crm.objects.companies.write crm.objects.deals.read crm.objects.deals.write oauth"),
		},
		Salesforce: SalesforceConfig{
			ClientID:     os.Getenv("SALESFORCE_CLIENT_ID"),
			ClientSecret: os.Getenv("SALESFORCE_CLIENT_SECRET"),
			RedirectURI:  getEnv("SALESFORCE_REDIRECT_URI", defaultRedirectURI("salesforce")),
			APIVersion:   getEnv("SALESFORCE_API_VERSION", "v58.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	return cfg
}

func buildPostgresDSN() string {
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "crmbridge")
	password := getEnv("POSTGRES_PASSWORD", "secret")
	dbName := getEnv("POSTGRES_DB", "crmbridge")
	sslMode := getEnv("POSTGRES_SSLMODE", "disable")

	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(user, password),
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   dbName,
	}

	query := u.Query()
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()

	return u.String()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Type != "postgres" && c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin must be configured")
	}

	if c.Environment == "production" {
		if c.HubSpot.ClientID == "" && c.Salesforce.ClientID == "" {
			return fmt.Errorf("at least one CRM provider must be configured (HUBSPOT_CLIENT_ID or SALESFORCE_CLIENT_ID)")
		}
	}

	if c.HubSpot.ClientID != "" && c.HubSpot.ClientSecret == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_SECRET is required when HUBSPOT_CLIENT_ID is set")
	}

	if c.Salesforce.ClientID != "" && c.Salesforce.ClientSecret == "" {
		return fmt.Errorf("SALESFORCE_CLIENT_SECRET is required when SALESFORCE_CLIENT_ID is set")
	}

	if !strings.HasPrefix(c.Salesforce.APIVersion, "v") {
		return fmt.Errorf("SALESFORCE_API_VERSION must look like v58.0, got %q", c.Salesforce.APIVersion)
	}

	return nil
}

func loadCORSOrigins(env string) []string {
	if appURL := getAppURL(); appURL != "" {
		return []string{appURL}
	}

	if env == "development" {
		return []string{"http://localhost:3000", "http://localhost:8080"}
	}

	log.Println("WARNING: APP_URL not set. Using default localhost origins.")
	log.Println("WARNING: Set APP_URL environment variable for production deployments.")
	return []string{"http://localhost:3000", "http://localhost:8080"}
}

func defaultRedirectURI(provider string) string {
	if appURL := getAppURL(); appURL != "" {
		return appURL + "/auth/" + provider + "/callback"
	}
	return "http://localhost:8080/auth/" + provider + "/callback"
}

func getAppURL() string {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		return ""
	}
	return strings.TrimRight(appURL, "/")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
