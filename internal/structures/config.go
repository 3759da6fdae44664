package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type ArchiveConfig struct {
	Root           string        `yaml:"root" validate:"required|unixPath"`
	PrimaryAccount string        `yaml:"primaryAccount" validate:"required"`
	RescanInterval time.Duration `yaml:"rescanInterval" validate:"required|min:1"`
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

type ExportConfig struct {
	OutputDir   string        `yaml:"outputDir" validate:"required|unixPath"`
	WorkDir     string        `yaml:"workDir"`
	FFmpegPath  string        `yaml:"ffmpegPath"`
	FontPath    string        `yaml:"fontPath"`
	InitTimeout time.Duration `yaml:"initTimeout"`
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
	Archive     ArchiveConfig `yaml:"archive"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Export      ExportConfig  `yaml:"export"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
