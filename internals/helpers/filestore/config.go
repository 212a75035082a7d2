package filestore

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"schoolstaff_backend/internals/configs"
)

type Config struct {
	Options
	Root       string
	OSS        OSSConfig
	StagingTTL time.Duration
	ReaperCron string
}

func ConfigFromEnv() Config {
	return Config{
		Options: Options{
			Driver:   strings.ToLower(configs.GetEnv("FILESTORE_DRIVER", "local")),
			MaxW:     configs.GetEnvInt("FILESTORE_MAX_W", 1600),
			MaxH:     configs.GetEnvInt("FILESTORE_MAX_H", 1600),
			Quality:  float32(configs.GetEnvInt("FILESTORE_WEBP_QUALITY", 80)),
			MaxBytes: int64(configs.GetEnvInt("FILESTORE_MAX_MB", 10)) << 20,
		},
		Root: configs.GetEnv("UPLOAD_ROOT", "uploads"),
		OSS: OSSConfig{
			Endpoint:        configs.GetEnv("ALI_OSS_ENDPOINT"),
			AccessKeyID:     configs.GetEnv("ALI_OSS_ACCESS_KEY"),
			AccessKeySecret: configs.GetEnv("ALI_OSS_SECRET_KEY"),
			SecurityToken:   configs.GetEnv("ALI_OSS_SECURITY_TOKEN"),
			Bucket:          configs.GetEnv("ALI_OSS_BUCKET"),
			Prefix:          configs.GetEnv("ALI_OSS_PREFIX"),
		},
		StagingTTL: configs.GetEnvDuration("FILESTORE_STAGING_TTL", 6*time.Hour),
		ReaperCron: configs.GetEnv("FILESTORE_REAPER_CRON", "@every 30m"),
	}
}

// New builds the configured driver.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Root, cfg.Options)
	case "oss":
		return NewOSS(cfg.OSS, cfg.Options)
	default:
		return nil, errors.Errorf("unknown FILESTORE_DRIVER %q", cfg.Driver)
	}
}
