package config

type Config struct {
	ConfigVersion string            `yaml:"configVersion"`
	App           *App              `yaml:"app,omitempty"`
	Settings      map[string]string `yaml:"settings"`
}

type App struct {
	LogLevel *string  `yaml:"logLevel,omitempty"`
	AWS      *AWS     `yaml:"aws,omitempty"`
	HTTPAPI  *HTTPAPI `yaml:"httpApi,omitempty"`
}

type AWS struct {
	Region  *string `yaml:"region,omitempty"`
	Profile *string `yaml:"profile,omitempty"`
}

type HTTPAPI struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Address *string `yaml:"address,omitempty"`
	Port    *uint16 `yaml:"port,omitempty"`
}
