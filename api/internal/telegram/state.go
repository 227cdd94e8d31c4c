package telegram

import (
	"sync"
	"time"

	"aptitude-helper/api/internal/llm/types"
)

const (
	defaultDebounce = 1200 * time.Millisecond
	maxBatchImages  = 10
)

type photoBatch struct {
	ChatID       int64
	Key          string // "grp:<mediaGroupID>" | "chat:<chatID>"
	MediaGroupID string

	mu     sync.Mutex
	images [][]byte
	timer  *time.Timer
	closed bool // true после processBatch: новые фото идут в новую пачку
}

// problemFor: последняя извлечённая задача чата (для /debug).
func (r *Router) problemFor(chatID int64) (types.ProblemInfo, bool) {
	v, ok := r.problems.Load(chatID)
	if !ok {
		return types.ProblemInfo{}, false
	}
	p, ok := v.(types.ProblemInfo)
	return p, ok
}

func (r *Router) rememberProblem(chatID int64, p types.ProblemInfo) {
	if !p.HasValidProblem {
		r.problems.Delete(chatID)
		return
	}
	r.problems.Store(chatID, p)
}
