//go:build !windows

package constant

const (
	AppConfigDir = "/etc/dynipupdater"
	RunDir       = "/var/run"
)
