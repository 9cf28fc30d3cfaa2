package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	// EditorPassword gates the API when set. Empty disables auth.
	EditorPassword string `envconfig:"EDITOR_PASSWORD" default:""`
	ImageDir       string `envconfig:"IMAGE_DIR" default:"./data/images"`
	BundleDir      string `envconfig:"BUNDLE_DIR" default:"./data/bundles"`
	// ImageStoreURL points sessions at an external image store. Empty
	// uses the built-in one served under /images.
	ImageStoreURL  string `envconfig:"IMAGE_STORE_URL" default:""`
	DetectURL      string `envconfig:"DETECT_URL" default:"http://localhost:8700"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	MaxUploadMB    int    `envconfig:"MAX_UPLOAD_MB" default:"32"`

	HitTolerancePx     float64       `envconfig:"HIT_TOLERANCE_PX" default:"6"`
	NudgeStepPx        float64       `envconfig:"NUDGE_STEP_PX" default:"1"`
	NudgeFastFactor    float64       `envconfig:"NUDGE_FAST_FACTOR" default:"10"`
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
