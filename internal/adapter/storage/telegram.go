package storage

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wpback/internal/config"
)

// telegramFileLimitMB is the bot API's document size ceiling; larger
// archives degrade to a notification.
const telegramFileLimitMB = 50

type TelegramStorage struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	sendFile   bool
	notifyOnly bool
}

func NewTelegram(cfg *config.UploadTarget) (*TelegramStorage, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var chatID int64
	fmt.Sscanf(cfg.ChatID, "%d", &chatID)

	return &TelegramStorage{
		bot:        bot,
		chatID:     chatID,
		sendFile:   cfg.SendFile,
		notifyOnly: cfg.NotifyOnly,
	}, nil
}

func (t *TelegramStorage) Upload(ctx context.Context, localPath, remoteName string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)

	if t.notifyOnly || !t.sendFile || sizeMB > telegramFileLimitMB {
		message := fmt.Sprintf("Backup created\n\nFile: %s\nSize: %.2f MB\nTime: %s",
			remoteName, sizeMB, info.ModTime().Format("2006-01-02 15:04:05"))
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
			return fmt.Errorf("failed to send telegram notification: %w", err)
		}
		return nil
	}

	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(localPath))
	doc.Caption = fmt.Sprintf("Backup: %s (%.2f MB)", remoteName, sizeMB)
	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}
	return nil
}
