package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/dbops/internal/config"
)

// Bot API uploads are capped at 50 MB.
const telegramMaxFileSize = 50 * 1024 * 1024

type TelegramStorage struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	sendFile   bool
	notifyOnly bool
}

func NewTelegram(cfg *config.UploadTarget) (*TelegramStorage, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat_id %q: %w", cfg.ChatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramStorage{
		bot:        bot,
		chatID:     chatID,
		sendFile:   cfg.SendFile,
		notifyOnly: cfg.NotifyOnly,
	}, nil
}

// Upload sends the file itself when allowed and small enough, otherwise a
// notification naming it.
func (t *TelegramStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	fileInfo, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	var msg tgbotapi.Chattable
	if t.notifyOnly || !t.sendFile || fileInfo.Size() > telegramMaxFileSize {
		msg = tgbotapi.NewMessage(t.chatID, notification(remoteName, fileInfo))
	} else {
		doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(localPath))
		doc.Caption = fmt.Sprintf("Banner backup: %s (%.2f MB)", remoteName, sizeMB(fileInfo))
		msg = doc
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send to telegram: %w", err)
	}

	return nil
}

func notification(remoteName string, info os.FileInfo) string {
	return fmt.Sprintf(
		"Banner backup created\n\nFile: %s\nSize: %.2f MB\nTime: %s",
		remoteName,
		sizeMB(info),
		info.ModTime().Format("2006-01-02 15:04:05"),
	)
}

func sizeMB(info os.FileInfo) float64 {
	return float64(info.Size()) / (1024 * 1024)
}
