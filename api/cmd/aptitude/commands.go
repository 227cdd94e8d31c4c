package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/types"
)

type runFunc func(ctx context.Context, eng llm.Engine, cmd *cobra.Command, args []string) (any, error)

// withEngine wraps a subcommand body: engine setup, deadline, JSON output.
func withEngine(cc *commandContext, timeout func() time.Duration, run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		base := cmd.Context()
		if base == nil {
			base = context.Background()
		}
		ctx, cancel := context.WithTimeout(base, timeout())
		defer cancel()

		eng, err := cc.ensureEngine(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		out, err := run(ctx, eng, cmd, args)
		if err != nil {
			return err
		}
		return writeJSON(cmd, out)
	}
}

func newExtractCommand(cc *commandContext, timeout func() time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <image>...",
		Short: "Extract the aptitude problem shown in one or more screenshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEngine(cc, timeout, func(ctx context.Context, eng llm.Engine, _ *cobra.Command, args []string) (any, error) {
			return eng.ExtractProblem(ctx, args)
		}),
	}
}

func newSolveCommand(cc *commandContext, timeout func() time.Duration) *cobra.Command {
	var problemPath string

	cmd := &cobra.Command{
		Use:   "solve --problem <file|->",
		Short: "Solve a problem previously produced by extract",
		Long: `Solve reads the JSON printed by "aptitude extract" and asks the model for a
step-by-step solution.

Examples:
  aptitude extract q1.png > problem.json && aptitude solve --problem problem.json
  aptitude extract q1.png | aptitude solve --problem -`,
		Args: cobra.NoArgs,
		RunE: withEngine(cc, timeout, func(ctx context.Context, eng llm.Engine, cmd *cobra.Command, _ []string) (any, error) {
			problem, err := readProblem(cmd, problemPath)
			if err != nil {
				return nil, err
			}
			sol, err := eng.GenerateSolution(ctx, problem)
			if err != nil {
				return nil, err
			}
			return types.SolutionEnvelope{Solution: sol}, nil
		}),
	}
	cmd.Flags().StringVarP(&problemPath, "problem", "p", "-", "Problem JSON file, - for stdin")
	return cmd
}

func newDebugCommand(cc *commandContext, timeout func() time.Duration) *cobra.Command {
	var (
		problemPath string
		solution    string
	)

	cmd := &cobra.Command{
		Use:   "debug --problem <file|-> --solution <text> [image]...",
		Short: "Review your own solution of a problem and explain the mistake",
		RunE: withEngine(cc, timeout, func(ctx context.Context, eng llm.Engine, cmd *cobra.Command, args []string) (any, error) {
			if strings.TrimSpace(solution) == "" {
				return nil, fmt.Errorf("--solution is required")
			}
			problem, err := readProblem(cmd, problemPath)
			if err != nil {
				return nil, err
			}
			sol, err := eng.DebugSolution(ctx, problem, solution, args)
			if err != nil {
				return nil, err
			}
			return types.SolutionEnvelope{Solution: sol}, nil
		}),
	}
	cmd.Flags().StringVarP(&problemPath, "problem", "p", "-", "Problem JSON file, - for stdin")
	cmd.Flags().StringVarP(&solution, "solution", "s", "", "Your current solution")
	return cmd
}

func newAudioCommand(cc *commandContext, timeout func() time.Duration) *cobra.Command {
	var (
		data string
		mime string
	)

	cmd := &cobra.Command{
		Use:   "audio [file]",
		Short: "Transcribe a spoken question and answer it",
		Long: `Audio sends a recording to the model once, without retries.
Pass a file path, or inline base64 with --data and --mime.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withEngine(cc, timeout, func(ctx context.Context, eng llm.Engine, _ *cobra.Command, args []string) (any, error) {
			src := types.AudioSource{Data: data, MIMEType: mime}
			if len(args) == 1 {
				src.Path = args[0]
			}
			return eng.AnalyzeAudio(ctx, src)
		}),
	}
	cmd.Flags().StringVar(&data, "data", "", "Inline audio as base64 or a data URL")
	cmd.Flags().StringVar(&mime, "mime", "", "MIME type of the audio (audio/mp3, audio/wav, ...)")
	return cmd
}

func newImageCommand(cc *commandContext, timeout func() time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "image <file>",
		Short: "Describe and answer whatever question a screenshot shows",
		Args:  cobra.ExactArgs(1),
		RunE: withEngine(cc, timeout, func(ctx context.Context, eng llm.Engine, _ *cobra.Command, args []string) (any, error) {
			return eng.AnalyzeImage(ctx, args[0])
		}),
	}
}

// readProblem accepts both a bare ProblemInfo and {"problem": {...}}.
func readProblem(cmd *cobra.Command, path string) (types.ProblemInfo, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return types.ProblemInfo{}, fmt.Errorf("open problem: %w", err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return types.ProblemInfo{}, fmt.Errorf("read problem: %w", err)
	}
	var wrapped struct {
		Problem *types.ProblemInfo `json:"problem"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Problem != nil {
		return *wrapped.Problem, nil
	}
	var p types.ProblemInfo
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.ProblemInfo{}, fmt.Errorf("decode problem: %w", err)
	}
	return p, nil
}
