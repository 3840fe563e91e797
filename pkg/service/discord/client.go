package discord

import (
	"context"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
)

// client implements Service interface
type client struct {
	session *discordgo.Session
}

// NewSession creates a bot session. The session is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, goerr.New("Discord bot token is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// New creates a Service on top of an existing session
func New(session *discordgo.Session) Service {
	return &client{session: session}
}

func (c *client) SendMessage(ctx context.Context, channelID, content string, embeds ...*discordgo.MessageEmbed) error {
	for i, msg := range buildMessages(content, embeds) {
		if _, err := c.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
			return goerr.Wrap(err, "failed to send discord message",
				goerr.V("channel_id", channelID),
				goerr.V("part", i))
		}
	}
	return nil
}

func buildMessages(content string, embeds []*discordgo.MessageEmbed) []*discordgo.MessageSend {
	chunks := ChunkEmbeds(embeds)
	if len(chunks) == 0 {
		return []*discordgo.MessageSend{{Content: content}}
	}

	msgs := make([]*discordgo.MessageSend, 0, len(chunks))
	for i, chunk := range chunks {
		msg := &discordgo.MessageSend{Embeds: chunk}
		if i == 0 {
			msg.Content = content
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// ChunkEmbeds splits embeds into groups that fit in one message. An embed
// whose own text is over MaxEmbedChars is split by fields first.
func ChunkEmbeds(embeds []*discordgo.MessageEmbed) [][]*discordgo.MessageEmbed {
	var (
		chunks  [][]*discordgo.MessageEmbed
		current []*discordgo.MessageEmbed
		total   int
	)
	for _, embed := range embeds {
		for _, part := range splitEmbed(embed) {
			size := EmbedLength(part)
			if len(current) > 0 && (len(current) == MaxEmbedsPerMessage || total+size > MaxEmbedChars) {
				chunks = append(chunks, current)
				current, total = nil, 0
			}
			current = append(current, part)
			total += size
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// EmbedLength counts the characters Discord charges against MaxEmbedChars
func EmbedLength(embed *discordgo.MessageEmbed) int {
	if embed == nil {
		return 0
	}
	n := utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
	if embed.Footer != nil {
		n += utf8.RuneCountInString(embed.Footer.Text)
	}
	if embed.Author != nil {
		n += utf8.RuneCountInString(embed.Author.Name)
	}
	for _, f := range embed.Fields {
		n += fieldLength(f)
	}
	return n
}

func fieldLength(f *discordgo.MessageEmbedField) int {
	if f == nil {
		return 0
	}
	return utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
}

// splitEmbed keeps the header of embed on every part and spreads its fields
// so that no part goes over MaxEmbedChars
func splitEmbed(embed *discordgo.MessageEmbed) []*discordgo.MessageEmbed {
	if EmbedLength(embed) <= MaxEmbedChars || len(embed.Fields) < 2 {
		return []*discordgo.MessageEmbed{embed}
	}

	header := EmbedLength(&discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Footer:      embed.Footer,
		Author:      embed.Author,
	})

	var parts []*discordgo.MessageEmbed
	var fields []*discordgo.MessageEmbedField
	size := header
	flush := func() {
		part := *embed
		part.Fields = fields
		parts = append(parts, &part)
		fields, size = nil, header
	}
	for _, f := range embed.Fields {
		if len(fields) > 0 && size+fieldLength(f) > MaxEmbedChars {
			flush()
		}
		fields = append(fields, f)
		size += fieldLength(f)
	}
	flush()
	return parts
}
