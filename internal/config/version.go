package config

// Set at build time with -ldflags "-X .../internal/config.version=..."
var (
	version    = "0.0.0"
	subversion = "local"
)

func GetFullVersion() string {
	if subversion != "" {
		return version + "-" + subversion
	}
	return version
}
