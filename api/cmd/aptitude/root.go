package main

import (
	"time"

	"github.com/spf13/cobra"
)

const defaultTimeout = 3 * time.Minute

func newRootCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "aptitude",
		Short:         "Solve aptitude questions from screenshots and audio with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "TOML configuration file (default: $APTITUDE_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&ctx.debugFlag, "debug", false, "Verbose logging to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Deadline for the whole command")

	timeoutFn := func() time.Duration { return timeout }
	rootCmd.AddCommand(newExtractCommand(ctx, timeoutFn))
	rootCmd.AddCommand(newSolveCommand(ctx, timeoutFn))
	rootCmd.AddCommand(newDebugCommand(ctx, timeoutFn))
	rootCmd.AddCommand(newAudioCommand(ctx, timeoutFn))
	rootCmd.AddCommand(newImageCommand(ctx, timeoutFn))

	return rootCmd
}
