package llm

import (
	"context"

	"aptitude-helper/api/internal/llm/types"
)

// Engine is what the HTTP, Telegram and CLI surfaces need from a model client.
type Engine interface {
	Name() string
	GetModel() string

	ExtractProblem(ctx context.Context, imagePaths []string) (types.ProblemInfo, error)
	ExtractProblemFromAttachments(ctx context.Context, parts []types.AttachmentPart) (types.ProblemInfo, error)
	GenerateSolution(ctx context.Context, problem types.ProblemInfo) (types.SolutionResult, error)
	DebugSolution(ctx context.Context, problem types.ProblemInfo, currentSolution string, imagePaths []string) (types.SolutionResult, error)
	DebugSolutionWithAttachments(ctx context.Context, problem types.ProblemInfo, currentSolution string, parts []types.AttachmentPart) (types.SolutionResult, error)
	AnalyzeAudio(ctx context.Context, src types.AudioSource) (types.AnalysisResult, error)
	AnalyzeImage(ctx context.Context, imagePath string) (types.AnalysisResult, error)
	AnalyzeImageAttachment(ctx context.Context, part types.AttachmentPart) (types.AnalysisResult, error)
}
