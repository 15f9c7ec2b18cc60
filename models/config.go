package models

type Config struct {
	App      App
	Settings Settings
}

type App struct {
	LogLevel string
	AWS      AWS
	HTTPAPI  HTTPAPI
}

type AWS struct {
	Region  string
	Profile string
}

type HTTPAPI struct {
	Enabled bool
	Address string
	Port    uint16
}

// Settings holds the values read from the flat settings keys
// (IPServer, DeviceName, Rule{N}.*).
type Settings struct {
	IPServer   string `validate:"required,url"`
	DeviceName string `validate:"required,notblank"`
	Rules      []Rule `validate:"dive"`
}
