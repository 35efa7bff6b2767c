package main

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/LSkevi/PieTracker/internal/krypto"
)

// insecureDevSecret signs tokens when TOKEN_SECRET is not set. It exists
// so local development works out of the box. It MUST NOT be relied on
// when the server is reachable from untrusted networks, anyone knowing
// this string can forge tokens. Startup logs a warning when it's in use.
const insecureDevSecret = "pietracker-insecure-dev-secret"

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// authConfig is the configuration for tokens and the reset flow.
type authConfig struct {
	tokenSecret    krypto.Secret
	devSecretInUse bool
	tokenTTL       time.Duration
	resetTTL       time.Duration
	workerTimeout  time.Duration
	superUsername  string
	superPassword  krypto.Secret
	emailFrom      string
	emailDriver    string
	postmarkURL    *url.URL
	postmarkToken  krypto.Secret
	postmarkStream string
}

// config is the configuration for the server command.
type config struct {
	http        httpConfig
	auth        authConfig
	dataDir     string
	corsOrigins []string
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8000",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
		},
		auth: authConfig{
			tokenSecret:    krypto.NewSecret(insecureDevSecret),
			devSecretInUse: true,
			tokenTTL:       7 * 24 * time.Hour,
			resetTTL:       15 * time.Minute,
			workerTimeout:  10 * time.Second,
			superUsername:  "admin@pietracker.com",
			emailFrom:      "noreply@pietracker.app",
			emailDriver:    "log",
			postmarkStream: "outbound",
		},
		dataDir: "data",
		corsOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"https://*.vercel.app",
			"https://pietracker.vercel.app",
			"https://*.onrender.com",
			"https://pietracker-frontend.onrender.com",
		},
	}
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"DATA_DIR": func(v string, c *config) error {
		c.dataDir = v
		return nil
	},
	"TOKEN_SECRET": func(v string, c *config) error {
		if v == "" {
			return fmt.Errorf("must not be empty")
		}
		c.auth.tokenSecret = krypto.NewSecret(v)
		c.auth.devSecretInUse = false
		return nil
	},
	"TOKEN_TTL": func(v string, c *config) error {
		return confDuration(v, &c.auth.tokenTTL, time.Minute, math.MaxInt64)
	},
	"RESET_TOKEN_TTL": func(v string, c *config) error {
		return confDuration(v, &c.auth.resetTTL, time.Minute, math.MaxInt64)
	},
	"WORKER_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.auth.workerTimeout, time.Second, math.MaxInt64)
	},
	"SUPERUSER_USERNAME": func(v string, c *config) error {
		c.auth.superUsername = v
		return nil
	},
	"SUPERUSER_PASSWORD": func(v string, c *config) error {
		c.auth.superPassword = krypto.NewSecret(v)
		return nil
	},
	"EMAIL_FROM": func(v string, c *config) error {
		c.auth.emailFrom = v
		return nil
	},
	"EMAIL_DRIVER": func(v string, c *config) error {
		if v != "log" && v != "postmark" {
			return fmt.Errorf("unknown email driver %q", v)
		}
		c.auth.emailDriver = v
		return nil
	},
	"POSTMARK_API_URL": func(v string, c *config) error {
		u, err := url.Parse(v)
		if err != nil {
			return err
		}
		c.auth.postmarkURL = u
		return nil
	},
	"POSTMARK_SERVER_TOKEN": func(v string, c *config) error {
		c.auth.postmarkToken = krypto.NewSecret(v)
		return nil
	},
	"POSTMARK_MESSAGE_STREAM": func(v string, c *config) error {
		c.auth.postmarkStream = v
		return nil
	},
	"CORS_ORIGINS": func(v string, c *config) error {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.corsOrigins = origins
		return nil
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				return c, fmt.Errorf("invalid env variable %s: %w", key, err)
			}
		}
	}

	return c, nil
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}
