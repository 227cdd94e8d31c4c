package types

import "github.com/pkg/errors"

// SolutionResult: ответ модели на solve/debug.
// required: correct_answer
type SolutionResult struct {
	CorrectAnswer string   `json:"correct_answer"`
	AnswerValue   string   `json:"answer_value"`
	Explanation   string   `json:"explanation"`
	SolvingSteps  []string `json:"solving_steps"`
	ErrorAnalysis string   `json:"error_analysis,omitempty"`
	Verification  string   `json:"verification,omitempty"`
	TimeToSolve   string   `json:"time_to_solve,omitempty"`
	Tips          string   `json:"tips,omitempty"`
}

// SolutionEnvelope is the {"solution": {...}} wrapper the prompts ask for.
type SolutionEnvelope struct {
	Solution SolutionResult `json:"solution"`
}

// NoValidProblemSolution is returned instead of calling the model when the
// extracted problem is marked as invalid.
func NoValidProblemSolution() SolutionResult {
	return SolutionResult{
		CorrectAnswer: "N/A",
		AnswerValue:   "No valid problem detected",
		Explanation:   "The provided image does not contain a clear aptitude problem to solve",
		SolvingSteps:  []string{"Unable to identify a problem in the image"},
		TimeToSolve:   "N/A",
		Tips:          "Ensure the image contains a clear aptitude question with readable text",
	}
}

// ValidateSolutionFields checks a decoded solution object (already unwrapped
// from the envelope, if any).
func ValidateSolutionFields(raw map[string]any) error {
	v, ok := raw["correct_answer"]
	if !ok {
		return errors.New("missing required field correct_answer")
	}
	if _, ok := v.(string); !ok {
		return errors.Errorf("correct_answer has unexpected type %T", v)
	}
	return nil
}
