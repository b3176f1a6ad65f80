package commands

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects messages longer than this
const maxMessageLen = 2000

func respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

// respondLong answers with the first chunk and posts the rest to the channel.
func respondLong(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	chunks := chunkLines(content, maxMessageLen)
	respondText(s, i, chunks[0])
	for _, c := range chunks[1:] {
		if _, err := s.ChannelMessageSend(i.ChannelID, c); err != nil {
			log.Printf("Failed to send message to channel %s: %v", i.ChannelID, err)
		}
	}
}

// chunkLines splits content on line boundaries into pieces of at most max
// bytes. A single line longer than max is cut on a rune boundary.
func chunkLines(content string, max int) []string {
	var chunks []string
	var buffer strings.Builder
	for _, line := range strings.Split(content, "\n") {
		for len(line) > max {
			if buffer.Len() > 0 {
				chunks = append(chunks, buffer.String())
				buffer.Reset()
			}
			cut := max
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if buffer.Len() > 0 && buffer.Len()+len(line)+1 > max {
			chunks = append(chunks, buffer.String())
			buffer.Reset()
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
	}
	if buffer.Len() > 0 || len(chunks) == 0 {
		chunks = append(chunks, buffer.String())
	}
	return chunks
}

func getIntOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *int64 {
	for _, o := range opts {
		if o.Name == name {
			v := o.IntValue()
			return &v
		}
	}
	return nil
}

func getStringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *string {
	for _, o := range opts {
		if o.Name == name {
			v := o.StringValue()
			return &v
		}
	}
	return nil
}
