package app

import (
	"os"
	"path/filepath"
	"testing"

	"dynipupdater/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleConfig = `configVersion: 0.1.0
app:
  logLevel: debug
  aws:
    region: eu-west-1
  httpApi:
    port: 9000
settings:
  IPServer: https://checkip.amazonaws.com
  DeviceName: office-pc
  Rule1.SecurityGroupId: sg-0abc
  Rule1.PortToOpen: "3389"
  Rule2.SecurityGroupId: sg-0def
  Rule2.PortToOpen: "22"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "eu-west-1", cfg.App.AWS.Region)
	assert.True(t, cfg.App.HTTPAPI.Enabled)
	assert.Equal(t, "127.0.0.1", cfg.App.HTTPAPI.Address)
	assert.Equal(t, uint16(9000), cfg.App.HTTPAPI.Port)

	assert.Equal(t, "office-pc", cfg.Settings.DeviceName)
	assert.Equal(t, []models.Rule{
		{SecurityGroupID: "sg-0abc", Port: 3389},
		{SecurityGroupID: "sg-0def", Port: 22},
	}, cfg.Settings.Rules)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig), map[string]string{
		"DYNIP_LOG_LEVEL":        "warn",
		"AWS_REGION":             "us-east-1",
		"DYNIP_API_ENABLED":      "false",
		"DYNIP_DeviceName":       "laptop",
		"DYNIP_Rule2_PortToOpen": "2222",
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, "us-east-1", cfg.App.AWS.Region)
	assert.False(t, cfg.App.HTTPAPI.Enabled)
	assert.Equal(t, "laptop", cfg.Settings.DeviceName)
	assert.Equal(t, 2222, cfg.Settings.Rules[1].Port)
}

func TestLoadConfig_EnvironmentOnly(t *testing.T) {
	cfg, err := LoadConfig("", map[string]string{
		"DYNIP_CONFIG":                writeConfig(t, "configVersion: 0.1.0\n"),
		"DYNIP_IPServer":              "dns://resolver1.opendns.com/myip.opendns.com",
		"DYNIP_DeviceName":            "laptop",
		"DYNIP_Rule1_SecurityGroupId": "sg-1",
		"DYNIP_Rule1_PortToOpen":      "22",
	})
	require.NoError(t, err)
	assert.Equal(t, "dns://resolver1.opendns.com/myip.opendns.com", cfg.Settings.IPServer)
	assert.Equal(t, "laptop", cfg.Settings.DeviceName)
	assert.Equal(t, []models.Rule{{SecurityGroupID: "sg-1", Port: 22}}, cfg.Settings.Rules)
	assert.Equal(t, defaultAppConfig, cfg.App)
}

func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), map[string]string{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadConfig_BlankDeviceName(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, sampleConfig), map[string]string{"DYNIP_DeviceName": "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "DeviceName")
}

func TestLoadConfig_UnsupportedVersion(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "configVersion: 2.0.0\n"), map[string]string{})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, ErrConfigUnsupportedVersion)
}

func TestExportConfig_RoundTrip(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig), map[string]string{})
	require.NoError(t, err)

	out, err := yaml.Marshal(ExportConfig(cfg))
	require.NoError(t, err)

	again, err := LoadConfig(writeConfig(t, string(out)), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
