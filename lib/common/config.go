package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Option values
// --------------------------------------------------------------------------

const (
	SerializerString = "string"
	SerializerJSON   = "json"
	SerializerYAML   = "yaml"
	SerializerGOB    = "gob"

	EncryptionNone   = "none"
	EncryptionBase64 = "base64"
	EncryptionAEAD   = "aead"

	ExecutorInline = "inline"
	ExecutorSerial = "serial"
	ExecutorPool   = "pool"
)

// --------------------------------------------------------------------------
// Pocket configuration struct
// --------------------------------------------------------------------------

// Config holds everything needed to assemble a pocket on top of a data directory.
type Config struct {
	// storage
	DataDir    string
	SyncWrites bool
	CacheSize  int // 0 disables the lru cache

	// pipeline
	Serializer string
	Encryption string
	Passphrase string
	Salt       string

	// scheduling
	Executor string
	Workers  int

	// Logging configuration
	LogLevel string
}

// DefaultConfig returns a configuration for an unencrypted, uncached pocket in ./pocket.
func DefaultConfig() Config {
	return Config{
		DataDir:    "pocket",
		Serializer: SerializerJSON,
		Encryption: EncryptionNone,
		Salt:       "pocket",
		Executor:   ExecutorInline,
		Workers:    4,
		LogLevel:   "warn",
	}
}

// Validate checks the configuration for contradicting or missing values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}

	switch c.Serializer {
	case SerializerString, SerializerJSON, SerializerYAML, SerializerGOB:
	default:
		return fmt.Errorf("invalid serializer %s (expected one of: string, json, yaml, gob)", c.Serializer)
	}

	switch c.Encryption {
	case EncryptionNone, EncryptionBase64:
	case EncryptionAEAD:
		if c.Passphrase == "" {
			return fmt.Errorf("encryption %s requires a passphrase", c.Encryption)
		}
		if c.Salt == "" {
			return fmt.Errorf("encryption %s requires a salt", c.Encryption)
		}
	default:
		return fmt.Errorf("invalid encryption %s (expected one of: none, base64, aead)", c.Encryption)
	}

	switch c.Executor {
	case ExecutorInline, ExecutorSerial:
	case ExecutorPool:
		if c.Workers < 1 {
			return fmt.Errorf("executor %s requires at least one worker", c.Executor)
		}
	default:
		return fmt.Errorf("invalid executor %s (expected one of: inline, serial, pool)", c.Executor)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative")
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Storage")
	addField("Data Directory", c.DataDir)
	addField("Sync Writes", fmt.Sprintf("%t", c.SyncWrites))
	if c.CacheSize > 0 {
		addField("Cache Size", fmt.Sprintf("%d entries", c.CacheSize))
	} else {
		addField("Cache Size", "disabled")
	}

	addSection("Pipeline")
	addField("Serializer", c.Serializer)
	addField("Encryption", c.Encryption)
	if c.Encryption == EncryptionAEAD {
		addField("Passphrase", strings.Repeat("*", 8))
		addField("Salt", c.Salt)
	}

	addSection("Scheduling")
	addField("Executor", c.Executor)
	if c.Executor == ExecutorPool {
		addField("Workers", fmt.Sprintf("%d", c.Workers))
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
