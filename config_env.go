package donorlink

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is the flat environment surface. Only knobs a deployment shell
// plausibly tunes are exposed; wire-schema storage keys are deliberately not
// overridable from the environment.
type envConfig struct {
	AuthBaseURL    string        `env:"AUTH_BASE_URL"`
	AuthLoginPath  string        `env:"AUTH_LOGIN_PATH"`
	AuthTimeout    time.Duration `env:"AUTH_TIMEOUT"`
	GuardLogin     string        `env:"GUARD_LOGIN_ROUTE"`
	GuardReturn    string        `env:"GUARD_RETURN_PARAM"`
	AuditEnabled   bool          `env:"AUDIT_ENABLED"`
	MetricsEnabled bool          `env:"METRICS_ENABLED"`
	LatencyEnabled bool          `env:"METRICS_LATENCY_HISTOGRAMS"`
}

// ConfigFromEnv loads configuration from DONORLINK_-prefixed environment
// variables, layered over [DefaultConfig].
//
// ConfigFromEnv may return an error when input validation, dependency calls, or storage checks fail.
// ConfigFromEnv does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ConfigFromEnv() (Config, error) {
	var raw envConfig
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: "DONORLINK_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := DefaultConfig()
	if raw.AuthBaseURL != "" {
		cfg.Auth.BaseURL = raw.AuthBaseURL
	}
	if raw.AuthLoginPath != "" {
		cfg.Auth.LoginPath = raw.AuthLoginPath
	}
	if raw.AuthTimeout > 0 {
		cfg.Auth.Timeout = raw.AuthTimeout
	}
	if raw.GuardLogin != "" {
		cfg.Guard.LoginRoute = raw.GuardLogin
	}
	if raw.GuardReturn != "" {
		cfg.Guard.ReturnParam = raw.GuardReturn
	}
	cfg.Audit.Enabled = raw.AuditEnabled
	cfg.Metrics.Enabled = raw.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = raw.LatencyEnabled

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
