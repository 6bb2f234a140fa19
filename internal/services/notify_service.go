package services

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leadcrm/internal/models"
)

// LeadNotifier is told about leads right after they are stored.
type LeadNotifier interface {
	LeadCreated(ctx context.Context, lead *models.Lead) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authenticates the bot (one getMe call) and posts to
// chatID afterwards.
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) LeadCreated(_ context.Context, lead *models.Lead) error {
	msg := tgbotapi.NewMessage(n.chatID, leadCreatedText(lead))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func leadCreatedText(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>New lead #%d</b>\n", lead.ID)
	fmt.Fprintf(&b, "%s %s &lt;%s&gt;\n",
		html.EscapeString(lead.FirstName), html.EscapeString(lead.LastName), html.EscapeString(lead.Email))
	if lead.Company != nil && *lead.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", html.EscapeString(*lead.Company))
	}
	if lead.Source != nil && *lead.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", html.EscapeString(*lead.Source))
	}
	fmt.Fprintf(&b, "Status: %s\nOwner: %s", html.EscapeString(lead.Status), html.EscapeString(lead.OwnerEmail))
	return b.String()
}
