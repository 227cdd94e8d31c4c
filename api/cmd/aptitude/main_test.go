package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptitude-helper/api/internal/config"
	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/types"
)

type stubEngine struct {
	paths    []string
	problem  types.ProblemInfo
	solution string
	audio    types.AudioSource
	err      error
}

func (s *stubEngine) Name() string     { return "stub" }
func (s *stubEngine) GetModel() string { return "stub-1" }

func (s *stubEngine) ExtractProblem(_ context.Context, paths []string) (types.ProblemInfo, error) {
	s.paths = paths
	return types.ProblemInfo{ProblemStatement: "2+2?", Options: []string{"A) 4"}, KeyConcepts: []string{}, DifficultyLevel: types.DifficultyEasy, HasValidProblem: true}, s.err
}

func (s *stubEngine) ExtractProblemFromAttachments(context.Context, []types.AttachmentPart) (types.ProblemInfo, error) {
	return types.ProblemInfo{}, errors.New("not used")
}

func (s *stubEngine) GenerateSolution(_ context.Context, p types.ProblemInfo) (types.SolutionResult, error) {
	s.problem = p
	return types.SolutionResult{CorrectAnswer: "A", AnswerValue: "4"}, s.err
}

func (s *stubEngine) DebugSolution(_ context.Context, p types.ProblemInfo, current string, paths []string) (types.SolutionResult, error) {
	s.problem, s.solution, s.paths = p, current, paths
	return types.SolutionResult{CorrectAnswer: "A", ErrorAnalysis: "carry"}, s.err
}

func (s *stubEngine) DebugSolutionWithAttachments(context.Context, types.ProblemInfo, string, []types.AttachmentPart) (types.SolutionResult, error) {
	return types.SolutionResult{}, errors.New("not used")
}

func (s *stubEngine) AnalyzeAudio(_ context.Context, src types.AudioSource) (types.AnalysisResult, error) {
	s.audio = src
	return types.AnalysisResult{Text: "heard", Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}, s.err
}

func (s *stubEngine) AnalyzeImage(_ context.Context, path string) (types.AnalysisResult, error) {
	s.paths = []string{path}
	return types.AnalysisResult{Text: "seen"}, s.err
}

func (s *stubEngine) AnalyzeImageAttachment(context.Context, types.AttachmentPart) (types.AnalysisResult, error) {
	return types.AnalysisResult{}, errors.New("not used")
}

func runCLI(t *testing.T, eng llm.Engine, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APTITUDE_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cc := newCommandContext(func(context.Context, *config.Config, *zap.Logger) (llm.Engine, error) {
		return eng, nil
	})
	cmd := newRootCommand(cc)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractPrintsProblemJSON(t *testing.T) {
	eng := &stubEngine{}
	out, err := runCLI(t, eng, "", "extract", "a.png", "b.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.jpg"}, eng.paths)

	var p types.ProblemInfo
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "2+2?", p.ProblemStatement)
	assert.True(t, p.HasValidProblem)
}

func TestSolveReadsProblemFromStdin(t *testing.T) {
	eng := &stubEngine{}
	out, err := runCLI(t, eng, `{"problem_statement":"2+2?","has_valid_problem":true}`, "solve")
	require.NoError(t, err)
	assert.Equal(t, "2+2?", eng.problem.ProblemStatement)

	var env types.SolutionEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "A", env.Solution.CorrectAnswer)
}

func TestSolveAcceptsWrappedProblemFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"problem":{"problem_statement":"x?","has_valid_problem":true}}`), 0o600))

	eng := &stubEngine{}
	_, err := runCLI(t, eng, "", "solve", "--problem", path)
	require.NoError(t, err)
	assert.Equal(t, "x?", eng.problem.ProblemStatement)
}

func TestDebugRequiresSolution(t *testing.T) {
	_, err := runCLI(t, &stubEngine{}, `{"problem_statement":"x?"}`, "debug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--solution")
}

func TestDebugPassesSolutionAndImages(t *testing.T) {
	eng := &stubEngine{}
	out, err := runCLI(t, eng, `{"problem_statement":"x?","has_valid_problem":true}`, "debug", "-s", "x = 3", "work.png")
	require.NoError(t, err)
	assert.Equal(t, "x = 3", eng.solution)
	assert.Equal(t, []string{"work.png"}, eng.paths)
	assert.Contains(t, out, `"error_analysis": "carry"`)
}

func TestAudioPathAndInline(t *testing.T) {
	eng := &stubEngine{}
	out, err := runCLI(t, eng, "", "audio", "q.wav")
	require.NoError(t, err)
	assert.Equal(t, types.AudioSource{Path: "q.wav"}, eng.audio)
	assert.Contains(t, out, `"text": "heard"`)

	eng = &stubEngine{}
	_, err = runCLI(t, eng, "", "audio", "--data", "AAAA", "--mime", "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, types.AudioSource{Data: "AAAA", MIMEType: "audio/wav"}, eng.audio)
}

func TestEngineErrorIsReturned(t *testing.T) {
	eng := &stubEngine{err: &llm.RemoteCallError{Op: "analyze image", Code: 400, Err: errors.New("bad request")}}
	out, err := runCLI(t, eng, "", "image", "shot.png")
	require.Error(t, err)
	assert.Empty(t, out)

	var remote *llm.RemoteCallError
	assert.True(t, errors.As(err, &remote))
}

func TestMissingAPIKeyFailsBeforeEngine(t *testing.T) {
	t.Setenv("APTITUDE_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")
	called := false
	cc := newCommandContext(func(context.Context, *config.Config, *zap.Logger) (llm.Engine, error) {
		called = true
		return nil, nil
	})
	cmd := newRootCommand(cc)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"image", "shot.png"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.False(t, called)
}
