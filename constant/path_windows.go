//go:build windows

package constant

const (
	AppConfigDir = `C:\ProgramData\dynipupdater`
	RunDir       = `C:\ProgramData\dynipupdater`
)
