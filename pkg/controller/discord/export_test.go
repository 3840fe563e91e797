package discord

// Export internal types and functions for testing
type ConfirmRegistry = confirmRegistry

var (
	NewConfirmRegistry  = newConfirmRegistry
	ParseConfirmID      = parseConfirmID
	ErrConfirmNotFound  = errConfirmNotFound
	ErrConfirmWrongUser = errConfirmWrongUser
)

func (r *confirmRegistry) Register(userID string) (string, <-chan bool, func()) {
	return r.register(userID)
}

func (r *confirmRegistry) Resolve(token, userID string, yes bool) error {
	return r.resolve(token, userID, yes)
}

func (r *confirmRegistry) Size() int {
	return r.size()
}

func (h *Handler) PendingConfirms() int {
	return h.confirms.size()
}
