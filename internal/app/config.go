package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dynipupdater/constant"
	"dynipupdater/internal/settings"
	"dynipupdater/models"
	"dynipupdater/models/config"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = constant.AppConfigDir + "/config.yaml"
	EnvPrefix         = "DYNIP_"
)

var ErrConfigUnsupportedVersion = errors.New("config unsupported version")

var defaultAppConfig = models.App{
	LogLevel: "info",
	HTTPAPI: models.HTTPAPI{
		Enabled: true,
		Address: "127.0.0.1",
		Port:    8471,
	},
}

// environment holds the ambient options that may come from the process
// environment. Unset variables leave the pointers nil.
type environment struct {
	ConfigPath string  `env:"DYNIP_CONFIG"`
	LogLevel   *string `env:"DYNIP_LOG_LEVEL"`
	Region     *string `env:"AWS_REGION"`
	Profile    *string `env:"AWS_PROFILE"`
	APIEnabled *bool   `env:"DYNIP_API_ENABLED"`
	APIAddress *string `env:"DYNIP_API_ADDRESS"`
	APIPort    *uint16 `env:"DYNIP_API_PORT"`
}

// LoadConfig builds the configuration from the YAML file at path and the
// environment (environ; nil means os.Environ). An empty path falls back to
// DYNIP_CONFIG and then DefaultConfigPath. A missing file is not an error:
// every setting can also come from the environment.
func LoadConfig(path string, environ map[string]string) (models.Config, error) {
	var envCfg environment
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&envCfg, opts); err != nil {
		return models.Config{}, fmt.Errorf("%w: failed to parse environment: %w", ErrConfiguration, err)
	}

	if path == "" {
		path = envCfg.ConfigPath
	}
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}

	fileCfg, err := readConfigFile(path, explicit)
	if err != nil {
		return models.Config{}, err
	}

	cfg, err := ImportConfig(fileCfg)
	if err != nil {
		return models.Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	applyEnvironment(&cfg.App, envCfg)

	lookupEnv := os.LookupEnv
	if environ != nil {
		lookupEnv = func(key string) (string, bool) {
			v, ok := environ[key]
			return v, ok
		}
	}
	cfg.Settings = settings.Load(settings.Chain(
		settings.FromEnviron(EnvPrefix, lookupEnv),
		settings.FromMap(fileCfg.Settings),
	))

	if err := validateSettings(cfg.Settings); err != nil {
		return models.Config{}, err
	}
	return cfg, nil
}

func readConfigFile(path string, explicit bool) (config.Config, error) {
	cfgFile, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return config.Config{}, nil
		}
		return config.Config{}, fmt.Errorf("%w: failed to read config file: %w", ErrConfiguration, err)
	}
	cfg := config.Config{}
	if err := yaml.Unmarshal(cfgFile, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("%w: failed to unmarshal config file: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// ImportConfig merges a file configuration over the defaults. Settings keys
// are left to the caller since they are layered with the environment.
func ImportConfig(cfg config.Config) (models.Config, error) {
	out := models.Config{App: defaultAppConfig}

	// files without a version are accepted and treated as current
	if cfg.ConfigVersion != "" && !strings.HasPrefix(cfg.ConfigVersion, "0.1.") {
		return out, ErrConfigUnsupportedVersion
	}

	if cfg.App != nil {
		if cfg.App.LogLevel != nil {
			out.App.LogLevel = *cfg.App.LogLevel
		}
		if cfg.App.AWS != nil {
			if cfg.App.AWS.Region != nil {
				out.App.AWS.Region = *cfg.App.AWS.Region
			}
			if cfg.App.AWS.Profile != nil {
				out.App.AWS.Profile = *cfg.App.AWS.Profile
			}
		}
		if cfg.App.HTTPAPI != nil {
			if cfg.App.HTTPAPI.Enabled != nil {
				out.App.HTTPAPI.Enabled = *cfg.App.HTTPAPI.Enabled
			}
			if cfg.App.HTTPAPI.Address != nil {
				out.App.HTTPAPI.Address = *cfg.App.HTTPAPI.Address
			}
			if cfg.App.HTTPAPI.Port != nil {
				out.App.HTTPAPI.Port = *cfg.App.HTTPAPI.Port
			}
		}
	}
	return out, nil
}

func applyEnvironment(app *models.App, e environment) {
	if e.LogLevel != nil {
		app.LogLevel = *e.LogLevel
	}
	if e.Region != nil {
		app.AWS.Region = *e.Region
	}
	if e.Profile != nil {
		app.AWS.Profile = *e.Profile
	}
	if e.APIEnabled != nil {
		app.HTTPAPI.Enabled = *e.APIEnabled
	}
	if e.APIAddress != nil {
		app.HTTPAPI.Address = *e.APIAddress
	}
	if e.APIPort != nil {
		app.HTTPAPI.Port = *e.APIPort
	}
}

// ExportConfig renders cfg in the file format, settings keys included.
func ExportConfig(cfg models.Config) config.Config {
	values := map[string]string{
		settings.KeyIPServer:   cfg.Settings.IPServer,
		settings.KeyDeviceName: cfg.Settings.DeviceName,
	}
	for idx, rule := range cfg.Settings.Rules {
		values[fmt.Sprintf("Rule%d.SecurityGroupId", idx+1)] = rule.SecurityGroupID
		values[fmt.Sprintf("Rule%d.PortToOpen", idx+1)] = fmt.Sprint(rule.Port)
	}
	return config.Config{
		ConfigVersion: "0.1.0",
		App: &config.App{
			LogLevel: &cfg.App.LogLevel,
			AWS: &config.AWS{
				Region:  &cfg.App.AWS.Region,
				Profile: &cfg.App.AWS.Profile,
			},
			HTTPAPI: &config.HTTPAPI{
				Enabled: &cfg.App.HTTPAPI.Enabled,
				Address: &cfg.App.HTTPAPI.Address,
				Port:    &cfg.App.HTTPAPI.Port,
			},
		},
		Settings: values,
	}
}
