package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:        8080,
		Environment: "development",
		CORSOrigins: []string{"http://localhost:3000"},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  ":memory:",
		},
		HubSpot: HubSpotConfig{
			ClientID:     "hs-id",
			ClientSecret: "hs-secret",
		},
		Salesforce: SalesforceConfig{
			APIVersion: "v58.0",
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsUnknownDatabaseType(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Type = "mysql"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestValidateRequiresCORSOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.CORSOrigins = nil

	require.Error(t, cfg.Validate())
}

func TestValidateRequiresProviderInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.HubSpot = HubSpotConfig{}
	cfg.Salesforce.ClientID = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one CRM provider")
}

func TestValidateRequiresSecretWithClientID(t *testing.T) {
	cfg := validConfig()
	cfg.HubSpot.ClientSecret = ""

	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Salesforce.ClientID = "sf-id"
	cfg.Salesforce.ClientSecret = ""

	require.Error(t, cfg.Validate())
}

func TestValidateChecksAPIVersionShape(t *testing.T) {
	cfg := validConfig()
	cfg.Salesforce.APIVersion = "58.0"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SALESFORCE_API_VERSION")
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CRM_BRIDGE_TEST_KEY", "set")
	assert.Equal(t, "set", getEnv("CRM_BRIDGE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("CRM_BRIDGE_TEST_MISSING", "fallback"))

	t.Setenv("CRM_BRIDGE_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("CRM_BRIDGE_TEST_INT", 7))
	t.Setenv("CRM_BRIDGE_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("CRM_BRIDGE_TEST_INT", 7))
}
