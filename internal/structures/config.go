package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type MonitorConfig struct {
	// RecencyWindow is how fresh the latest sample must be for a device
	// to count as online. The boundary is exclusive.
	RecencyWindow time.Duration `yaml:"recencyWindow" validate:"required|min:1"`
	// SampleInterval is the assumed gap between firmware samples. Volume
	// math uses this constant, not measured inter-sample deltas.
	SampleInterval   time.Duration `yaml:"sampleInterval" validate:"required|min:1"`
	WarningThreshold float64       `yaml:"warningThreshold"`
	LeakThreshold    float64       `yaml:"leakThreshold"`
	LeakRunLength    int           `yaml:"leakRunLength"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"sessionTTL" validate:"required|min:1"`
	BcryptCost int           `yaml:"bcryptCost"`
}

type UploadsConfig struct {
	Dir     string `yaml:"dir" validate:"required|unixPath"`
	BaseURL string `yaml:"baseUrl"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Monitor     MonitorConfig `yaml:"monitor"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Auth        AuthConfig    `yaml:"auth"`
	Uploads     UploadsConfig `yaml:"uploads"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
