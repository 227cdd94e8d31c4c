package handle

import (
	"net/http"
)

type ExtractRequest struct {
	Images []ImageInput `json:"images"`
}

// Extract: POST /v1/aptitude/extract
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	const op = "extract"
	var req ExtractRequest
	if !decodePOST(w, r, &req) {
		return
	}
	parts, err := attachments(req.Images)
	if err != nil {
		h.writeError(w, op, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	out, err := h.eng.ExtractProblemFromAttachments(ctx, parts)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
