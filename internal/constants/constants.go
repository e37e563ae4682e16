// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "packarr"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort     = "5000"
	DefaultLogLevel = "info"

	// Pack index TTL in the persistent store
	DefaultPackTTLDays = 10

	// Anti-loop guard settings
	GuardMaxEntries = 2000
	GuardTTLMinutes = 30

	// Rate limiting
	AllDebridRateLimit = 10 // requests per second
	AllDebridRateBurst = 2  // burst capacity
	TorBoxRateLimit    = 5  // requests per second
	TorBoxRateBurst    = 2  // burst capacity

	// Files smaller than this are samples or extras, never episodes.
	MinVideoFileBytes = 25 * 1024 * 1024
)

// VideoExtensions lists the file extensions accepted as playable video.
var VideoExtensions = []string{
	".mkv", ".mp4", ".avi", ".m4v", ".mov", ".wmv", ".flv", ".webm",
	".mpg", ".mpeg", ".ts",
}

// MultiSeasonKeywords mark a stored pack title as plausibly covering
// more than the seasons already indexed, which justifies a refetch on a
// partial cache hit.
var MultiSeasonKeywords = []string{
	"complete", "integrale", "intégrale", "collection", "all seasons",
	"batch", "series", "saisons", "seasons",
}
