package constants

import "time"

// Endpoint defaults
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultAPIVersion = "v1beta"
	DefaultResource   = "models"
	DefaultKeyParam   = "key"
	DefaultKeyEnvVar  = "GEMINI_API_KEY"
)

// Output defaults
const (
	DefaultOutputPath = "full_models.json"
	DefaultIndent     = "  "
	// DefaultPrettyWidth of zero puts every array element on its own line.
	DefaultPrettyWidth = 0
)

// Client defaults
const (
	// DefaultTimeout of zero leaves the request unbounded.
	DefaultTimeout   time.Duration = 0
	DefaultUserAgent               = "modelfetch/1.0"
)

// History store defaults
const (
	DefaultHistoryPath  = "modelfetch.db"
	DefaultHistoryTable = "fetch_runs"
	DefaultHistoryLimit = 20
	// SQLiteBusyPragma is appended to sqlite DSNs built from a plain path.
	SQLiteBusyPragma = "_pragma=busy_timeout(5000)"
)
