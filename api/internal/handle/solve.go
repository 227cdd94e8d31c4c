package handle

import (
	"net/http"

	"github.com/pkg/errors"

	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/types"
)

type SolveRequest struct {
	Problem *types.ProblemInfo `json:"problem"`
}

type DebugRequest struct {
	Problem         *types.ProblemInfo `json:"problem"`
	CurrentSolution string             `json:"current_solution"`
	Images          []ImageInput       `json:"images"`
}

// Solve: POST /v1/aptitude/solve
func (h *Handle) Solve(w http.ResponseWriter, r *http.Request) {
	const op = "solve"
	var req SolveRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if req.Problem == nil {
		h.writeError(w, op, errors.Wrap(llm.ErrInvalidInput, "problem is required"))
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	out, err := h.eng.GenerateSolution(ctx, *req.Problem)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.SolutionEnvelope{Solution: out})
}

// Debug: POST /v1/aptitude/debug
func (h *Handle) Debug(w http.ResponseWriter, r *http.Request) {
	const op = "debug"
	var req DebugRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if req.Problem == nil {
		h.writeError(w, op, errors.Wrap(llm.ErrInvalidInput, "problem is required"))
		return
	}
	parts, err := attachments(req.Images)
	if err != nil {
		h.writeError(w, op, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	out, err := h.eng.DebugSolutionWithAttachments(ctx, *req.Problem, req.CurrentSolution, parts)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.SolutionEnvelope{Solution: out})
}
