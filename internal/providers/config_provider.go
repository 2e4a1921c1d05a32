package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"fmd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "FMD_LOG_LEVEL")
	viper.BindEnv("monitor.recencyWindow", "FMD_RECENCY_WINDOW")
	viper.BindEnv("monitor.sampleInterval", "FMD_SAMPLE_INTERVAL")
	viper.BindEnv("monitor.warningThreshold", "FMD_WARNING_THRESHOLD")
	viper.BindEnv("persistence.saveInterval", "FMD_SAVE_INTERVAL")
	viper.BindEnv("auth.sessionTTL", "FMD_SESSION_TTL")
	viper.BindEnv("cache.enabled", "FMD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "FMD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "FlowMonitorDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
