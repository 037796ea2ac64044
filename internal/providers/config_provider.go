package providers

import (
	"fmt"
	"path/filepath"
	"snapshotd/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "SnapshotDaemon"

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "/tmp")
	v.SetDefault("storage.backend", "minio")
	v.SetDefault("storage.namespace", "snapshots")
	v.SetDefault("storage.fileName", "latest.json")
	v.SetDefault("storage.purgeLimit", 1000)
	v.SetDefault("storage.purgeWorkers", 8)
	v.SetDefault("snapshot.maxBodyBytes", 2<<20)
	v.SetDefault("snapshot.maxPoints", 2400)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 30*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	_ = v.BindEnv("webServer.port", "SNAPSHOTD_PORT")
	_ = v.BindEnv("logger.level", "SNAPSHOTD_LOG_LEVEL")
	_ = v.BindEnv("storage.backend", "SNAPSHOTD_STORAGE_BACKEND")
	_ = v.BindEnv("storage.endpoint", "SNAPSHOTD_STORAGE_ENDPOINT")
	_ = v.BindEnv("storage.accessKey", "SNAPSHOTD_STORAGE_ACCESS_KEY")
	_ = v.BindEnv("storage.secretKey", "SNAPSHOTD_STORAGE_SECRET_KEY")
	_ = v.BindEnv("storage.bucket", "SNAPSHOTD_STORAGE_BUCKET")
	_ = v.BindEnv("cache.enabled", "SNAPSHOTD_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "SNAPSHOTD_CACHE_SIZE")
	_ = v.BindEnv("cors.allowedOrigin", "SNAPSHOTD_CORS_ORIGIN")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	if conf.Storage.Backend == "minio" && (conf.Storage.Endpoint == "" || conf.Storage.Bucket == "") {
		return nil, fmt.Errorf("storage.endpoint and storage.bucket are required for the minio backend")
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
