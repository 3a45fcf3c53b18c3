package core

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env              string
	AppName          string
	Debug            bool
	TestMode         bool
	SecretKey        string
	Build            string
	WorkDir          string
	DefaultFromEmail string
	AdminEmail       string
	FrontendBaseURL  string
	SendgridAPIKey   string
	RollbarToken     string

	Server struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	// Club is the upstream club API this dashboard is a gateway for.
	Club struct {
		BaseURL string
		Timeout time.Duration
	}

	Database struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
}

func (c *Config) ServerAddress() string   { return net.JoinHostPort(c.Server.Host, c.Server.Port) }
func (c *Config) DatabaseAddress() string { return net.JoinHostPort(c.Database.Host, c.Database.Port) }

// NewConfig loads the app configuration from the environment.
// An optional `config/.env.<env>` file is loaded first if it exists.
func NewConfig(workDir string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("appName", "Clubboard")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "x1dm+)a7b!yrf0&h#e(w=$qz^38@ku*cgn54vj_p6s9l%2to-i")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("adminEmail", "admin@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", "8080")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("clubBaseURL", "http://127.0.0.1:8000")
	v.SetDefault("clubTimeout", 10*time.Second)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "clubboard")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseUser", "clubboard")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseDisableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		AppName:          v.GetString("appName"),
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST" || v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		Build:            v.GetString("build"),
		WorkDir:          workDir,
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		AdminEmail:       v.GetString("adminEmail"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Port = v.GetString("serverPort")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwtRefreshExpirationDelta")
	conf.Server.PasswordResetTimeoutDelta = v.GetDuration("passwordResetTimeoutDelta")
	conf.Server.ShutdownTimeout = v.GetDuration("shutdownTimeout")
	conf.Club.BaseURL = strings.TrimRight(v.GetString("clubBaseURL"), "/")
	conf.Club.Timeout = v.GetDuration("clubTimeout")
	conf.Database.Engine = v.GetString("databaseEngine")
	conf.Database.Name = v.GetString("databaseName")
	conf.Database.Host = v.GetString("databaseHost")
	conf.Database.Port = v.GetString("databasePort")
	conf.Database.User = v.GetString("databaseUser")
	conf.Database.Password = v.GetString("databasePassword")
	conf.Database.AdminUser = v.GetString("databaseAdminUser")
	conf.Database.AdminPassword = v.GetString("databaseAdminPassword")
	conf.Database.DisableTLS = v.GetBool("databaseDisableTLS")

	if conf.Club.BaseURL == "" {
		return nil, fmt.Errorf("config: clubBaseURL is required")
	}
	return conf, nil
}
