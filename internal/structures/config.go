package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// StorageConfig describes the object store holding one snapshot blob per address.
type StorageConfig struct {
	Backend       string `yaml:"backend" validate:"required|in:minio,memory"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"accessKey"`
	SecretKey     string `yaml:"secretKey"`
	UseSSL        bool   `yaml:"useSSL"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	PublicBaseURL string `yaml:"publicBaseURL"`
	Namespace     string `yaml:"namespace" validate:"required"`
	FileName      string `yaml:"fileName" validate:"required"`
	Compress      bool   `yaml:"compress"`
	PurgeLimit    int    `yaml:"purgeLimit" validate:"required|min:1"`
	PurgeWorkers  int    `yaml:"purgeWorkers" validate:"required|min:1"`
}

type SnapshotConfig struct {
	MaxBodyBytes int64 `yaml:"maxBodyBytes" validate:"required|min:1"`
	MaxPoints    int   `yaml:"maxPoints" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CorsConfig struct {
	AllowedOrigin string `yaml:"allowedOrigin"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Storage   StorageConfig  `yaml:"storage"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	Cors      CorsConfig     `yaml:"cors"`
}
