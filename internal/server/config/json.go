package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ttttiu/WAS/internal/flagx"
	"github.com/ttttiu/WAS/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for the token lifetime, which allows
// parsing both string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr      string         `json:"endpoint_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	TokenExpiration   timex.Duration `json:"token_expiration"`
	MinPasswordLength int            `json:"min_password_length"`
	MaxLoginAttempts  int            `json:"max_login_attempts"`
	SaltLength        int            `json:"salt_length"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics: a broken config file is a deployment
// error, not a runtime condition.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenExpiration = time.Duration(c.TokenExpiration.Duration)
	config.MinPasswordLength = c.MinPasswordLength
	config.MaxLoginAttempts = c.MaxLoginAttempts
	config.SaltLength = c.SaltLength
}
