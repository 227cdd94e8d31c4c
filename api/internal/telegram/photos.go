package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"aptitude-helper/api/internal/llm/types"
)

const debugCaptionPrefix = "/debug"

func (r *Router) acceptPhoto(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]
	imgBytes, err := r.downloadFile(ph.FileID)
	if err != nil {
		r.SendError(cid, "download", err)
		return
	}

	// фото с подписью "/debug ...": контекст к проверке решения, без склейки в пачку
	if caption := strings.TrimSpace(msg.Caption); strings.HasPrefix(caption, debugCaptionPrefix) {
		solution := strings.TrimSpace(strings.TrimPrefix(caption, debugCaptionPrefix))
		r.runDebug(context.Background(), cid, solution, [][]byte{imgBytes})
		return
	}

	key := "chat:" + fmt.Sprint(cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}

	var b *photoBatch
	for {
		bi, _ := r.batches.LoadOrStore(key, &photoBatch{
			ChatID: cid, Key: key, MediaGroupID: msg.MediaGroupID, images: make([][]byte, 0, 4),
		})
		b = bi.(*photoBatch)
		b.mu.Lock()
		if !b.closed {
			break
		}
		// пачку уже забрал processBatch, берём новую
		b.mu.Unlock()
		r.batches.CompareAndDelete(key, b)
	}

	first := len(b.images) == 0
	if len(b.images) < maxBatchImages {
		b.images = append(b.images, imgBytes)
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(r.Debounce, func() { r.processBatch(key) })
	b.mu.Unlock()

	if first {
		r.send(cid, "📸 Got it. If the question spans several screenshots, send them right away — I will read them together.")
	}
}

func (r *Router) processBatch(key string) {
	bi, ok := r.batches.LoadAndDelete(key)
	if !ok {
		return
	}
	b := bi.(*photoBatch)

	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	images := append([][]byte(nil), b.images...)
	chatID := b.ChatID
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}
	r.solveImages(context.Background(), chatID, images)
}

// solveImages: extract → (если задача валидна) solve → ответ в чат.
func (r *Router) solveImages(ctx context.Context, chatID int64, images [][]byte) {
	problem, err := r.Engine.ExtractProblemFromAttachments(ctx, toAttachments(images))
	if err != nil {
		r.SendError(chatID, "reading the question", err)
		return
	}
	r.rememberProblem(chatID, problem)
	if problem.HasValidProblem {
		r.send(chatID, formatProblem(problem))
	}

	solution, err := r.Engine.GenerateSolution(ctx, problem)
	if err != nil {
		r.SendError(chatID, "solving", err)
		return
	}
	r.send(chatID, formatSolution(solution))
}

func (r *Router) runDebug(ctx context.Context, chatID int64, currentSolution string, images [][]byte) {
	problem, ok := r.problemFor(chatID)
	if !ok {
		r.send(chatID, "I have no problem to check against yet. Send a screenshot of the question first.")
		return
	}
	if strings.TrimSpace(currentSolution) == "" {
		r.send(chatID, "Usage: /debug <your solution>")
		return
	}
	r.Log.Debug("debug requested", zap.Int64("chat_id", chatID), zap.Int("images", len(images)))

	solution, err := r.Engine.DebugSolutionWithAttachments(ctx, problem, currentSolution, toAttachments(images))
	if err != nil {
		r.SendError(chatID, "checking your solution", err)
		return
	}
	r.send(chatID, formatSolution(solution))
}

func toAttachments(images [][]byte) []types.AttachmentPart {
	return lo.Map(images, func(b []byte, _ int) types.AttachmentPart {
		return types.AttachmentPart{MIMEType: http.DetectContentType(b), Data: b}
	})
}

func (r *Router) downloadFile(fileID string) ([]byte, error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, errors.Wrap(err, "get file url")
	}
	return r.download(url)
}

func (r *Router) download(url string) ([]byte, error) {
	resp, err := r.HTTP.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
