package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fmd/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8085,
		},
		Persistence: structures.Persistence{
			FilePath:     "/tmp/fmd.dat",
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Monitor: structures.MonitorConfig{
			RecencyWindow:    10 * time.Second,
			SampleInterval:   5 * time.Second,
			WarningThreshold: 0.5,
		},
		Auth: structures.AuthConfig{
			SessionTTL: 24 * time.Hour,
			BcryptCost: 12,
		},
		Uploads: structures.UploadsConfig{
			Dir: "/tmp/uploads",
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

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroRecencyWindow(t *testing.T) {
	c := validConfig()
	c.Monitor.RecencyWindow = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroSessionTTL(t *testing.T) {
	c := validConfig()
	c.Auth.SessionTTL = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
