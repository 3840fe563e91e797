package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

const (
	// MaxEmbedsPerMessage is the Discord limit of embeds in one message
	MaxEmbedsPerMessage = 10
	// MaxEmbedChars is the Discord limit of embed text in one message,
	// summed over every embed of the message
	MaxEmbedChars = 6000
)

// Service sends messages to Discord channels
type Service interface {
	// SendMessage posts content and embeds to a channel. More than
	// MaxEmbedsPerMessage embeds or more than MaxEmbedChars of embed text
	// are split over several messages and content is attached to the
	// first one only.
	SendMessage(ctx context.Context, channelID, content string, embeds ...*discordgo.MessageEmbed) error
}
