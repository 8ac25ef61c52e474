// Package meta holds the application identity shared by every package.
package meta

const (
	// AppName is the binary name and the prefix for env vars and XDG dirs.
	AppName = "espim"

	// DisplayName is the human-readable product name.
	DisplayName = "Endless Sky Plug-In Manager"

	// CacheDirName is the directory under the user cache dir holding the
	// index cache and plugin checkouts.
	CacheDirName = "ESPIM"

	// LinkPrefix is prepended to a plugin name to form its link name inside
	// the game's plugin directory.
	LinkPrefix = "[ESPIM] "

	// DefaultIndexURL is the YAML plugin index fetched on every load.
	DefaultIndexURL = "https://raw.githubusercontent.com/MCOfficer/es-plugin-manager/master/plugins.yml"
)

// Version is set at build time via ldflags.
// go build -ldflags "-X github.com/whiskeyjimb/espim/internal/meta.Version=1.0.0"
var Version = "dev"

// Commit is set at build time via ldflags.
var Commit = "unknown"

// BuildTime is set at build time via ldflags.
var BuildTime = "unknown"
