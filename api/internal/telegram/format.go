package telegram

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/types"
)

func formatProblem(p types.ProblemInfo) string {
	var b strings.Builder
	b.WriteString("📝 Question")
	if p.ProblemType != "" {
		fmt.Fprintf(&b, " (%s", p.ProblemType)
		if p.DifficultyLevel != "" {
			fmt.Fprintf(&b, ", %s", p.DifficultyLevel)
		}
		b.WriteString(")")
	}
	b.WriteString(":\n")
	b.WriteString(strings.TrimSpace(p.ProblemStatement))
	for _, o := range p.Options {
		b.WriteString("\n  ")
		b.WriteString(o)
	}
	return b.String()
}

func formatSolution(s types.SolutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Answer: %s", s.CorrectAnswer)
	if s.AnswerValue != "" && s.AnswerValue != s.CorrectAnswer {
		fmt.Fprintf(&b, " — %s", s.AnswerValue)
	}
	if s.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Explanation)
	}
	if s.ErrorAnalysis != "" {
		b.WriteString("\n\n⚠️ What went wrong: ")
		b.WriteString(s.ErrorAnalysis)
	}
	if len(s.SolvingSteps) > 0 {
		b.WriteString("\n\nSteps:")
		for i, step := range s.SolvingSteps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, strings.TrimSpace(step))
		}
	}
	if s.Verification != "" {
		b.WriteString("\n\nCheck: ")
		b.WriteString(s.Verification)
	}
	if s.TimeToSolve != "" && s.TimeToSolve != "N/A" {
		b.WriteString("\n\n⏱ ")
		b.WriteString(s.TimeToSolve)
	}
	if s.Tips != "" {
		b.WriteString("\n💡 ")
		b.WriteString(s.Tips)
	}
	return b.String()
}

// userMessage: короткое объяснение ошибки без внутренних деталей.
func userMessage(err error) string {
	var parseErr *llm.ResponseParseError
	switch {
	case errors.Is(err, llm.ErrInvalidInput):
		return "the request was incomplete"
	case llm.IsTransient(err):
		return "the model is overloaded right now, please try again in a minute"
	case errors.As(err, &parseErr):
		return "the model returned an answer I could not read"
	default:
		return err.Error()
	}
}
