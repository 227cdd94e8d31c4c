package gemini

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/prompt"
	"aptitude-helper/api/internal/llm/types"
	"aptitude-helper/api/internal/util"
)

const (
	DefaultModel = "gemini-2.0-flash"

	maxOutputTokens = 2048
	temperature     = 0.1
	topP            = 0.8
	topK            = 10

	readConcurrency = 4
)

// Generator is the part of *genai.GenerativeModel the engine calls.
type Generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Engine struct {
	model    string
	system   string
	gen      Generator
	closer   io.Closer
	retry    llm.RetryPolicy
	readFile func(string) ([]byte, error)
	now      func() time.Time
	log      *zap.Logger
}

var _ llm.Engine = (*Engine)(nil)

// New builds an engine bound to one API key. Everything it needs is fixed
// here; the engine has no mutable state afterwards.
func New(ctx context.Context, apiKey string, opts ...Option) (*Engine, error) {
	e := &Engine{
		model:    DefaultModel,
		system:   prompt.System,
		retry:    llm.DefaultRetryPolicy(),
		readFile: os.ReadFile,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gen != nil {
		return e, nil
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.Wrap(llm.ErrInvalidInput, "GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "gemini: new client")
	}
	m := cl.GenerativeModel(e.model)
	if m == nil {
		_ = cl.Close()
		return nil, errors.New("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptrInt32(maxOutputTokens),
		Temperature:     ptrFloat32(temperature),
		TopP:            ptrFloat32(topP),
		TopK:            ptrInt32(topK),
	}
	e.gen = m
	e.closer = cl
	return e, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.model }

// Close releases the underlying genai client, if the engine owns one.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// --------------------------- EXTRACT ---------------------------

// ExtractProblem reads the screenshots and asks the model to pull out one
// aptitude problem as JSON.
func (e *Engine) ExtractProblem(ctx context.Context, imagePaths []string) (types.ProblemInfo, error) {
	if len(imagePaths) == 0 {
		return types.ProblemInfo{}, errors.Wrap(llm.ErrInvalidInput, "extract problem: no image paths provided")
	}
	parts, err := e.readImages(imagePaths)
	if err != nil {
		return types.ProblemInfo{}, err
	}
	return e.ExtractProblemFromAttachments(ctx, parts)
}

func (e *Engine) ExtractProblemFromAttachments(ctx context.Context, parts []types.AttachmentPart) (types.ProblemInfo, error) {
	const op = "extract problem"
	if len(parts) == 0 {
		return types.ProblemInfo{}, errors.Wrap(llm.ErrInvalidInput, op+": no images provided")
	}
	log := e.callLogger(op)

	txt, err := e.generateWithRetry(ctx, op, log, prompt.Build(e.system, prompt.Extract), parts)
	if err != nil {
		return types.ProblemInfo{}, err
	}

	obj, cleaned, err := decodeObject(op, txt)
	if err != nil {
		return types.ProblemInfo{}, err
	}
	if err := types.ValidateProblemFields(obj); err != nil {
		return types.ProblemInfo{}, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: err}
	}
	var pi types.ProblemInfo
	if err := json.Unmarshal([]byte(cleaned), &pi); err != nil {
		return types.ProblemInfo{}, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: err}
	}
	pi.Normalize()

	log.Info("problem extracted",
		zap.String("problem_type", pi.ProblemType),
		zap.Bool("has_valid_problem", pi.HasValidProblem),
	)
	return pi, nil
}

// --------------------------- SOLVE ---------------------------

// GenerateSolution solves an extracted problem. A problem marked as invalid
// gets the canned "N/A" answer without any call to the model.
func (e *Engine) GenerateSolution(ctx context.Context, problem types.ProblemInfo) (types.SolutionResult, error) {
	const op = "generate solution"
	if !problem.HasStatement() {
		return types.SolutionResult{}, errors.Wrap(llm.ErrInvalidInput, op+": problem_statement is required")
	}
	log := e.callLogger(op)
	if !problem.HasValidProblem {
		log.Info("no valid problem, returning fallback")
		return types.NoValidProblemSolution(), nil
	}

	problemJSON, err := json.MarshalIndent(problem, "", "  ")
	if err != nil {
		return types.SolutionResult{}, errors.Wrap(err, op+": encode problem")
	}

	txt, err := e.generateWithRetry(ctx, op, log, prompt.Build(e.system, prompt.Solve(string(problemJSON))), nil)
	if err != nil {
		return types.SolutionResult{}, err
	}
	return decodeSolution(op, txt)
}

// --------------------------- DEBUG ---------------------------

// DebugSolution asks the model to review currentSolution against the problem,
// with optional extra screenshots as context.
func (e *Engine) DebugSolution(ctx context.Context, problem types.ProblemInfo, currentSolution string, imagePaths []string) (types.SolutionResult, error) {
	if !problem.HasStatement() {
		return types.SolutionResult{}, errors.Wrap(llm.ErrInvalidInput, "debug solution: problem_statement is required")
	}
	parts, err := e.readImages(imagePaths)
	if err != nil {
		return types.SolutionResult{}, err
	}
	return e.DebugSolutionWithAttachments(ctx, problem, currentSolution, parts)
}

func (e *Engine) DebugSolutionWithAttachments(ctx context.Context, problem types.ProblemInfo, currentSolution string, parts []types.AttachmentPart) (types.SolutionResult, error) {
	const op = "debug solution"
	if !problem.HasStatement() {
		return types.SolutionResult{}, errors.Wrap(llm.ErrInvalidInput, op+": problem_statement is required")
	}
	log := e.callLogger(op)

	problemJSON, err := json.MarshalIndent(problem, "", "  ")
	if err != nil {
		return types.SolutionResult{}, errors.Wrap(err, op+": encode problem")
	}

	text := prompt.Build(e.system, prompt.Debug(string(problemJSON), currentSolution))
	txt, err := e.generateWithRetry(ctx, op, log, text, parts)
	if err != nil {
		return types.SolutionResult{}, err
	}
	return decodeSolution(op, txt)
}

// --------------------------- ANALYZE ---------------------------

// AnalyzeAudio sends one audio clip and returns the model's raw text. It is
// a single call: failures are returned as they are, without retries.
func (e *Engine) AnalyzeAudio(ctx context.Context, src types.AudioSource) (types.AnalysisResult, error) {
	const op = "analyze audio"

	var (
		part types.AttachmentPart
		task string
	)
	switch {
	case strings.TrimSpace(src.Path) != "":
		data, err := e.readFile(src.Path)
		if err != nil {
			return types.AnalysisResult{}, &llm.AttachmentReadError{Path: src.Path, Err: err}
		}
		part = types.AttachmentPart{
			MIMEType: util.PickMIME(src.MIMEType, "", util.AudioMIMEFromPath(src.Path)),
			Data:     data,
		}
		task = prompt.AudioFile
	case strings.TrimSpace(src.Data) != "":
		data, hint, err := util.DecodeBase64MaybeDataURL(src.Data)
		if err != nil {
			return types.AnalysisResult{}, errors.Wrapf(llm.ErrInvalidInput, "%s: bad base64: %v", op, err)
		}
		mime := util.PickMIME(src.MIMEType, hint, "")
		if mime == "" {
			return types.AnalysisResult{}, errors.Wrap(llm.ErrInvalidInput, op+": mime type is required for inline audio")
		}
		part = types.AttachmentPart{MIMEType: mime, Data: data}
		task = prompt.AudioInline
	default:
		return types.AnalysisResult{}, errors.Wrap(llm.ErrInvalidInput, op+": audio path or data is required")
	}

	log := e.callLogger(op)
	txt, err := e.generateOnce(ctx, op, prompt.Build(e.system, task), []types.AttachmentPart{part})
	if err != nil {
		log.Warn("call failed", zap.Error(err))
		return types.AnalysisResult{}, err
	}
	return types.AnalysisResult{Text: txt, Timestamp: e.now()}, nil
}

// AnalyzeImage reads one screenshot and returns the model's raw text.
func (e *Engine) AnalyzeImage(ctx context.Context, imagePath string) (types.AnalysisResult, error) {
	if strings.TrimSpace(imagePath) == "" {
		return types.AnalysisResult{}, errors.Wrap(llm.ErrInvalidInput, "analyze image: image path is required")
	}
	parts, err := e.readImages([]string{imagePath})
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return e.AnalyzeImageAttachment(ctx, parts[0])
}

func (e *Engine) AnalyzeImageAttachment(ctx context.Context, part types.AttachmentPart) (types.AnalysisResult, error) {
	const op = "analyze image"
	if len(part.Data) == 0 {
		return types.AnalysisResult{}, errors.Wrap(llm.ErrInvalidInput, op+": image is empty")
	}
	if part.MIMEType == "" {
		part.MIMEType = util.DefaultImageMIME
	}
	log := e.callLogger(op)

	txt, err := e.generateWithRetry(ctx, op, log, prompt.Build(e.system, prompt.Image), []types.AttachmentPart{part})
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return types.AnalysisResult{Text: txt, Timestamp: e.now()}, nil
}

// --------------------------- helpers ---------------------------

func (e *Engine) callLogger(op string) *zap.Logger {
	return e.log.With(
		zap.String("op", op),
		zap.String("model", e.model),
		zap.String("request_id", uuid.NewString()),
	)
}

// readImages reads files concurrently; parts keep the order of paths.
func (e *Engine) readImages(paths []string) ([]types.AttachmentPart, error) {
	parts := make([]types.AttachmentPart, len(paths))
	var g errgroup.Group
	g.SetLimit(readConcurrency)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			data, err := e.readFile(p)
			if err != nil {
				return &llm.AttachmentReadError{Path: p, Err: err}
			}
			parts[i] = types.AttachmentPart{MIMEType: util.ImageMIMEFromPath(p), Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (e *Engine) generateWithRetry(ctx context.Context, op string, log *zap.Logger, text string, parts []types.AttachmentPart) (string, error) {
	policy := e.retry
	policy.Logger = log
	return llm.Retry(policy, func() (string, error) {
		return e.generateOnce(ctx, op, text, parts)
	})
}

func (e *Engine) generateOnce(ctx context.Context, op, text string, parts []types.AttachmentPart) (string, error) {
	req := make([]genai.Part, 0, len(parts)+1)
	req = append(req, genai.Text(text))
	req = append(req, lo.Map(parts, func(p types.AttachmentPart, _ int) genai.Part {
		return genai.Blob{MIMEType: p.MIMEType, Data: p.Data}
	})...)

	resp, err := e.gen.GenerateContent(ctx, req...)
	if err != nil {
		return "", llm.NewRemoteCallError(op, err)
	}
	txt := responseText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", &llm.RemoteCallError{Op: op, Err: errors.New("empty response")}
	}
	return txt, nil
}

func decodeObject(op, raw string) (map[string]any, string, error) {
	cleaned := util.StripCodeFences(raw)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, cleaned, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: err}
	}
	if obj == nil {
		return nil, cleaned, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: errors.New("expected a JSON object")}
	}
	return obj, cleaned, nil
}

// decodeSolution принимает и {"solution": {...}}, и голый объект решения.
func decodeSolution(op, raw string) (types.SolutionResult, error) {
	obj, cleaned, err := decodeObject(op, raw)
	if err != nil {
		return types.SolutionResult{}, err
	}
	if inner, ok := obj["solution"].(map[string]any); ok {
		obj = inner
	}
	if err := types.ValidateSolutionFields(obj); err != nil {
		return types.SolutionResult{}, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: err}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return types.SolutionResult{}, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: err}
	}
	var sr types.SolutionResult
	if err := json.Unmarshal(b, &sr); err != nil {
		return types.SolutionResult{}, &llm.ResponseParseError{Op: op, Raw: cleaned, Err: err}
	}
	if sr.SolvingSteps == nil {
		sr.SolvingSteps = []string{}
	}
	return sr, nil
}

// responseText склеивает текстовые части первого кандидата с контентом.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
