package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sae/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Archive: structures.ArchiveConfig{
			Root:           "/var/lib/sae/archive",
			PrimaryAccount: "medicalmedium",
			RescanInterval: 5 * time.Minute,
		},
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			FilePath:     "/var/lib/sae/snapshot.bin",
			SaveInterval: 10 * time.Minute,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/var/log/sae",
		},
		Export: structures.ExportConfig{
			OutputDir: "/var/lib/sae/exports",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingArchiveRoot(t *testing.T) {
	c := validConfig()
	c.Archive.Root = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingPrimaryAccount(t *testing.T) {
	c := validConfig()
	c.Archive.PrimaryAccount = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
