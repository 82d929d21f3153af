package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runURL string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest a single profile URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := p.RunOne(ctx, runURL)
		if err != nil {
			return eris.Wrap(err, "run profile")
		}

		return emitSummary(os.Stdout, summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "profile URL (required)")
	_ = runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
}
