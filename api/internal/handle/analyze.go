package handle

import (
	"net/http"

	"aptitude-helper/api/internal/llm/types"
)

type AnalyzeImageRequest struct {
	Image ImageInput `json:"image"`
}

// AnalyzeAudioRequest принимает только inline-аудио: пути к файлам сервера
// через HTTP не открываем.
type AnalyzeAudioRequest struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// AnalyzeImage: POST /v1/aptitude/analyze/image
func (h *Handle) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	const op = "analyze image"
	var req AnalyzeImageRequest
	if !decodePOST(w, r, &req) {
		return
	}
	part, err := req.Image.attachment()
	if err != nil {
		h.writeError(w, op, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	out, err := h.eng.AnalyzeImageAttachment(ctx, part)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AnalyzeAudio: POST /v1/aptitude/analyze/audio
func (h *Handle) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	const op = "analyze audio"
	var req AnalyzeAudioRequest
	if !decodePOST(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	out, err := h.eng.AnalyzeAudio(ctx, types.AudioSource{Data: req.Data, MIMEType: req.MIMEType})
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
