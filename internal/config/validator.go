package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpectedEnvSchemaVersion is the schema version that the application expects
const ExpectedEnvSchemaVersion = "1.0"

// RequiredEnvVars lists the variables the server refuses to start without
var RequiredEnvVars = []string{
	EnvSchemaVersion,
	EnvAPIKey,
}

// RequiredPostgresEnvVars are additionally required unless STORE=memory
var RequiredPostgresEnvVars = []string{
	EnvDBUser,
	EnvDBPassword,
	EnvDBHost,
	EnvDBPort,
	EnvDBName,
}

// ValidateEnv checks that all required environment variables are set
// and that the schema version matches expectations
func ValidateEnv() error {
	schemaVersion := os.Getenv(EnvSchemaVersion)
	if schemaVersion == "" {
		return fmt.Errorf(ErrFmtSchemaMissing, ExpectedEnvSchemaVersion)
	}

	if schemaVersion != ExpectedEnvSchemaVersion {
		return fmt.Errorf(ErrFmtSchemaMismatch, ExpectedEnvSchemaVersion, schemaVersion)
	}

	required := RequiredEnvVars
	if !strings.EqualFold(os.Getenv(EnvStore), StoreMemory) {
		required = append(append([]string{}, required...), RequiredPostgresEnvVars...)
	}

	var missing []string
	for _, envVar := range required {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf(ErrFmtMissingVariables, strings.Join(missing, ", "))
	}

	return nil
}

// ValidateEnvWithWarnings checks environment variables and returns warnings
// for non-critical issues (like using default values)
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string

	if os.Getenv(EnvDBPassword) == "change_this_secure_password" {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}

	if os.Getenv(EnvAPIKey) == "generate_with_openssl_rand_hex_32" {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}

	if v, ok := os.LookupEnv(EnvDevMode); ok && strings.EqualFold(v, "true") && os.Getenv(EnvEnvironment) == "prod" {
		warnings = append(warnings, "DEV_MODE is enabled in prod - ad cooldowns are bypassed")
	}

	return warnings, nil
}
