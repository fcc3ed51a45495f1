package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./booky.db"

	// DefaultReviewsLimit is how many recent reviews the community page loads
	DefaultReviewsLimit = 10

	// DefaultTopReadersLimit is how many readers the top readers panel lists
	DefaultTopReadersLimit = 6
)
