package reddit

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// BaseURL is prefixed to permalinks
const BaseURL = "https://reddit.com"

const postFullIDPrefix = "t3_"

// ExtractPostID returns the base36 post ID following "/comments/" in link
func ExtractPostID(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", goerr.Wrap(ErrInvalidLink, "failed to parse link",
			goerr.V("link", link),
			goerr.V("cause", err.Error()))
	}

	_, rest, found := strings.Cut(u.Path, "/comments/")
	if !found {
		return "", goerr.Wrap(ErrInvalidLink, "link has no /comments/ segment", goerr.V("link", link))
	}

	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", goerr.Wrap(ErrInvalidLink, "link has empty post ID", goerr.V("link", link))
	}
	return id, nil
}

func toFullID(id string) string {
	if strings.HasPrefix(id, postFullIDPrefix) {
		return id
	}
	return postFullIDPrefix + id
}
