package discord

// Export internal functions for testing
var (
	BuildMessages = buildMessages
)
