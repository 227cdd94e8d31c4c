package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Difficulty: оценка сложности, которую возвращает модель.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyUnknown Difficulty = "unknown"
)

// ProblemInfo: результат извлечения задачи со скриншотов.
// required: problem_statement
type ProblemInfo struct {
	ProblemStatement string     `json:"problem_statement"`
	ProblemType      string     `json:"problem_type"`
	Options          []string   `json:"options"`
	KeyConcepts      []string   `json:"key_concepts"`
	DifficultyLevel  Difficulty `json:"difficulty_level"`
	HasValidProblem  bool       `json:"has_valid_problem"`
}

// HasStatement reports whether the problem carries a non-blank statement.
func (p ProblemInfo) HasStatement() bool {
	return strings.TrimSpace(p.ProblemStatement) != ""
}

// Normalize replaces nil slices with empty ones so the JSON output is stable.
func (p *ProblemInfo) Normalize() {
	if p.Options == nil {
		p.Options = []string{}
	}
	if p.KeyConcepts == nil {
		p.KeyConcepts = []string{}
	}
}

// ValidateProblemFields checks that a decoded JSON object carries the keys a
// ProblemInfo cannot do without.
func ValidateProblemFields(raw map[string]any) error {
	v, ok := raw["problem_statement"]
	if !ok {
		return errors.New("missing required field problem_statement")
	}
	if _, ok := v.(string); !ok {
		return errors.New("problem_statement must be a string")
	}
	return nil
}
