package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/anirudh/sutra/internal/skills"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramGateway struct {
	Bot    *tgbotapi.BotAPI
	Engine Engine
}

func NewTelegramGateway(token string, engine Engine) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:    bot,
		Engine: engine,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		chatID := fmt.Sprintf("%d", update.Message.Chat.ID)
		ctx := skills.WithChatID(context.Background(), chatID)

		response, err := tg.Engine.RunAsk(ctx, update.Message.Text)
		if err != nil {
			log.Printf("Error running ask: %v", err)
			response = "I couldn't work through that one..."
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		tg.Bot.Send(msg)
	}
	return nil
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := 0
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	msg.ParseMode = "Markdown" // Enable markdown for better alerts
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
