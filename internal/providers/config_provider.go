package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"sae/internal/structures"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "SAE_LOG_LEVEL")
	viper.BindEnv("archive.root", "SAE_ARCHIVE_ROOT")
	viper.BindEnv("archive.primaryAccount", "SAE_PRIMARY_ACCOUNT")
	viper.BindEnv("archive.rescanInterval", "SAE_RESCAN_INTERVAL")
	viper.BindEnv("persistence.saveInterval", "SAE_SAVE_INTERVAL")
	viper.BindEnv("export.ffmpegPath", "SAE_FFMPEG_PATH")
	viper.BindEnv("export.outputDir", "SAE_EXPORT_DIR")
	viper.BindEnv("cache.enabled", "SAE_CACHE_ENABLED")
	viper.BindEnv("cache.size", "SAE_CACHE_SIZE")

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

	conf.AppName = "StoryArchiveExplorer"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
