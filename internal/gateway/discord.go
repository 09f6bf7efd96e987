package gateway

import (
	"context"
	"log"

	"github.com/anirudh/sutra/internal/skills"
	"github.com/bwmarrin/discordgo"
)

type DiscordGateway struct {
	Session *discordgo.Session
	Engine  Engine
	done    chan struct{}
}

func NewDiscordGateway(token string, engine Engine) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	gw := &DiscordGateway{
		Session: session,
		Engine:  engine,
		done:    make(chan struct{}),
	}

	session.AddHandler(gw.onMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	return gw, nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Content == "" {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	ctx := skills.WithChatID(context.Background(), m.ChannelID)
	response, err := dg.Engine.RunAsk(ctx, m.Content)
	if err != nil {
		log.Printf("Error running ask: %v", err)
		response = "I couldn't work through that one..."
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, response); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}

func (dg *DiscordGateway) Start() error {
	if err := dg.Session.Open(); err != nil {
		return err
	}

	log.Printf("Authorized on account %s", dg.Session.State.User.Username)

	// Events arrive on the session's own goroutines; block until Stop.
	<-dg.done
	return nil
}

func (dg *DiscordGateway) Send(chatID string, text string) error {
	_, err := dg.Session.ChannelMessageSend(chatID, text)
	return err
}

func (dg *DiscordGateway) Stop() error {
	close(dg.done)
	return dg.Session.Close()
}
