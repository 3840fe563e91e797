package reddit

// Export internal functions for testing
var (
	ToFullID = toFullID
)
