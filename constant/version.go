package constant

// Overridden at build time with -ldflags "-X dynipupdater/constant.Version=..."
var (
	Version = "dev"
	Commit  = "none"
)
