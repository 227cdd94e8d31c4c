package telegram

import (
	"context"
	"strings"

	"aptitude-helper/api/internal/llm/types"
	"aptitude-helper/api/internal/util"
)

// Telegram voice messages are OGG/Opus.
const voiceMIME = "audio/ogg"

func (r *Router) acceptAudio(chatID int64, fileID, mime string) {
	data, err := r.downloadFile(fileID)
	if err != nil {
		r.SendError(chatID, "download", err)
		return
	}
	r.analyzeAudio(context.Background(), chatID, data, mime)
}

func (r *Router) analyzeAudio(ctx context.Context, chatID int64, data []byte, mime string) {
	part := types.AttachmentPart{MIMEType: util.PickMIME(mime, "", voiceMIME), Data: data}
	src := types.AudioSource{Data: part.Base64(), MIMEType: part.MIMEType}
	res, err := r.Engine.AnalyzeAudio(ctx, src)
	if err != nil {
		r.SendError(chatID, "listening", err)
		return
	}
	r.send(chatID, "🎧 "+strings.TrimSpace(res.Text))
}
