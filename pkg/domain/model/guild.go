package model

import (
	"bytes"
	"slices"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

// ErrGuildNotFound is returned when a guild is not found in the registry
var ErrGuildNotFound = goerr.New("guild not found")

// DefaultRelaySchedule is the cron spec used when a guild enables relay without a schedule
const DefaultRelaySchedule = "@every 30s"

// GuildEntry binds a Discord guild to the subreddit it moderates
type GuildEntry struct {
	ID               string
	Name             string
	Subreddit        string
	ModeratorRoleIDs []string
	LogChannelIDs    []string
	Relay            RelayConfig
	Discussion       DiscussionConfig
}

// IsModerator reports whether any of roleIDs grants moderator permission
func (g *GuildEntry) IsModerator(roleIDs []string) bool {
	for _, r := range roleIDs {
		if slices.Contains(g.ModeratorRoleIDs, r) {
			return true
		}
	}
	return false
}

// RelayConfig controls new post relay into a Discord channel.
// Relay is disabled when ChannelID is empty.
type RelayConfig struct {
	ChannelID string
	Schedule  string
}

// Enabled reports whether relay is configured
func (r RelayConfig) Enabled() bool {
	return r.ChannelID != ""
}

// CronSpec returns the schedule or the default one
func (r RelayConfig) CronSpec() string {
	if r.Schedule == "" {
		return DefaultRelaySchedule
	}
	return r.Schedule
}

// DiscussionConfig holds the templates used for discussion posts
type DiscussionConfig struct {
	FlairID       string
	TitleTemplate string
	BodyTemplate  string
}

const (
	defaultDiscussionTitle = "Discussion: {{ .Paper }}"
	defaultDiscussionBody  = "Discussion thread for {{ .Paper }}. This post will be unlocked when the paper is over."
)

// DiscussionContent is the rendered title and body of a discussion post
type DiscussionContent struct {
	Title string
	Body  string
}

type discussionTemplateData struct {
	Paper string
}

// Render fills the title and body templates
func (d DiscussionConfig) Render(paper string) (*DiscussionContent, error) {
	titleTmpl := d.TitleTemplate
	if titleTmpl == "" {
		titleTmpl = defaultDiscussionTitle
	}
	bodyTmpl := d.BodyTemplate
	if bodyTmpl == "" {
		bodyTmpl = defaultDiscussionBody
	}

	data := discussionTemplateData{Paper: paper}
	title, err := renderTemplate("title", titleTmpl, data)
	if err != nil {
		return nil, err
	}
	body, err := renderTemplate("body", bodyTmpl, data)
	if err != nil {
		return nil, err
	}
	return &DiscussionContent{Title: title, Body: body}, nil
}

// Validate checks that both templates parse
func (d DiscussionConfig) Validate() error {
	for name, src := range map[string]string{"title": d.TitleTemplate, "body": d.BodyTemplate} {
		if src == "" {
			continue
		}
		if _, err := template.New(name).Option("missingkey=error").Parse(src); err != nil {
			return goerr.Wrap(err, "invalid discussion template", goerr.V("template", name))
		}
	}
	return nil
}

func renderTemplate(name, src string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse template", goerr.V("template", name))
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render template", goerr.V("template", name))
	}
	return buf.String(), nil
}

// GuildRegistry holds guild configurations.
// It does not hold Repository or UseCase instances (settings only).
type GuildRegistry struct {
	entries map[string]*GuildEntry
	order   []string // preserves registration order
}

// NewGuildRegistry creates a new empty GuildRegistry
func NewGuildRegistry() *GuildRegistry {
	return &GuildRegistry{
		entries: make(map[string]*GuildEntry),
	}
}

// Register adds a guild entry to the registry
func (r *GuildRegistry) Register(entry *GuildEntry) {
	if _, exists := r.entries[entry.ID]; !exists {
		r.order = append(r.order, entry.ID)
	}
	r.entries[entry.ID] = entry
}

// Get retrieves a guild entry by ID
func (r *GuildRegistry) Get(guildID string) (*GuildEntry, error) {
	entry, ok := r.entries[guildID]
	if !ok {
		return nil, goerr.Wrap(ErrGuildNotFound, "guild not found",
			goerr.V("guild_id", guildID))
	}
	return entry, nil
}

// List returns all registered guild entries in registration order
func (r *GuildRegistry) List() []*GuildEntry {
	result := make([]*GuildEntry, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// IDs returns all registered guild IDs in registration order
func (r *GuildRegistry) IDs() []string {
	return slices.Clone(r.order)
}
