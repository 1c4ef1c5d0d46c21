package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sgpa-scan/api/internal/extract"
	"sgpa-scan/api/internal/grades"
	"sgpa-scan/api/internal/scan"
)

// maxImageBytes matches the HTTP API body limit.
const maxImageBytes = 20 << 20

// imageOf returns the file to scan: the largest photo size, or a document sent
// as an image file.
func imageOf(msg *tgbotapi.Message) (fileID, mime string, ok bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, "image/jpeg", true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, d.MimeType, true
	}
	return "", "", false
}

func (r *Router) acceptImage(ctx context.Context, chatID int64, fileID, mime string) {
	s := r.session(chatID)
	if !s.beginScan() {
		r.send(chatID, "Still reading your previous photo, please wait.")
		return
	}
	// records stays nil on failure so the chat keeps its current table
	var records []grades.Record
	defer func() { s.endScan(records) }()

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.Log.Warn("telegram file url failed", "chat_id", chatID, "error", err)
		r.send(chatID, "Could not fetch the photo from Telegram, please send it again.")
		return
	}
	data, err := download(ctx, url, maxImageBytes)
	if errors.Is(err, errTooLarge) {
		r.send(chatID, "That file is too large, please send a photo under 20 MB.")
		return
	}
	if err != nil {
		r.Log.Warn("telegram download failed", "chat_id", chatID, "error", err)
		r.send(chatID, "Could not fetch the photo from Telegram, please send it again.")
		return
	}

	progress := r.progressReporter(chatID)
	ctx, cancel := context.WithTimeout(ctx, r.ScanTimeout)
	defer cancel()

	res, err := r.Scanner.Run(ctx, extract.NewImage(data, mime), progress)
	if err != nil {
		kind, text := scan.Classify(err)
		r.Log.Warn("scan failed", "chat_id", chatID, "kind", kind, "error", err)
		r.send(chatID, "❌ "+text)
		return
	}
	if len(res.Records) == 0 {
		r.send(chatID, "No courses found on that image. You can /add them by hand.")
		return
	}
	records = res.Records
	r.sendMarkdown(chatID, formatSheet(res.Records, res.Aggregate)+"\n\nEdit with /set, /add or /del.")
}

// progressReporter posts one status message and edits it as stages pass.
func (r *Router) progressReporter(chatID int64) scan.ProgressFunc {
	msgID := 0
	return func(st scan.Stage) {
		text := progressText(st)
		if msgID == 0 {
			m, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text))
			if err == nil {
				msgID = m.MessageID
			}
			return
		}
		if _, err := r.Bot.Send(tgbotapi.NewEditMessageText(chatID, msgID, text)); err != nil {
			r.Log.Debug("progress edit failed", "chat_id", chatID, "error", err)
		}
	}
}

var errTooLarge = errors.New("file exceeds size limit")

// download fetches url, refusing bodies longer than limit bytes.
func download(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errTooLarge
	}
	return b, nil
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
