package discord

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

const (
	overwriteYesPrefix = "overwrite_yes:"
	overwriteNoPrefix  = "overwrite_no:"
)

var (
	errConfirmNotFound  = goerr.New("confirmation expired or unknown")
	errConfirmWrongUser = goerr.New("confirmation belongs to another user")
)

type pendingConfirm struct {
	userID string
	answer chan bool
}

// confirmRegistry routes overwrite button clicks to the waiting command
type confirmRegistry struct {
	mu      sync.Mutex
	pending map[string]*pendingConfirm
}

func newConfirmRegistry() *confirmRegistry {
	return &confirmRegistry{pending: make(map[string]*pendingConfirm)}
}

// register opens a confirmation for userID. release must be called when the
// caller stops waiting.
func (r *confirmRegistry) register(userID string) (token string, answer <-chan bool, release func()) {
	token = strings.ReplaceAll(uuid.NewString(), "-", "")
	p := &pendingConfirm{userID: userID, answer: make(chan bool, 1)}

	r.mu.Lock()
	r.pending[token] = p
	r.mu.Unlock()

	return token, p.answer, func() {
		r.mu.Lock()
		delete(r.pending, token)
		r.mu.Unlock()
	}
}

// resolve delivers the answer for token. Only the first answer of the registered user counts.
func (r *confirmRegistry) resolve(token, userID string, yes bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[token]
	if !ok {
		return goerr.Wrap(errConfirmNotFound, "cannot resolve confirmation", goerr.V("token", token))
	}
	if p.userID != userID {
		return goerr.Wrap(errConfirmWrongUser, "cannot resolve confirmation",
			goerr.V("token", token),
			goerr.V("user_id", userID))
	}

	delete(r.pending, token)
	p.answer <- yes
	return nil
}

func (r *confirmRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// parseConfirmID splits a button custom ID into its token and answer
func parseConfirmID(customID string) (token string, yes bool, ok bool) {
	if t, found := strings.CutPrefix(customID, overwriteYesPrefix); found {
		return t, true, t != ""
	}
	if t, found := strings.CutPrefix(customID, overwriteNoPrefix); found {
		return t, false, t != ""
	}
	return "", false, false
}
