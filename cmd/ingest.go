package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/profile-cli/internal/roster"
)

var (
	ingestFile  string
	ingestSheet string
	ingestLimit int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest all profiles listed in a roster file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		entries, skipped, err := roster.Load(ingestFile, roster.Options{
			SheetName: ingestSheet,
			Limit:     ingestLimit,
		})
		if err != nil {
			return err
		}
		zap.L().Info("roster loaded",
			zap.String("file", ingestFile),
			zap.Int("entries", len(entries)),
			zap.Int("skipped", skipped))
		if len(entries) == 0 {
			return eris.New("roster contains no usable profile URLs")
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := p.RunBatch(ctx, ingestFile, entries)
		if err != nil {
			return eris.Wrap(err, "ingest batch")
		}

		return emitSummary(os.Stdout, summary)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "roster path, .xlsx or .csv (required)")
	ingestCmd.Flags().StringVar(&ingestSheet, "sheet", "", "roster sheet name for xlsx rosters (default: first sheet)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "stop after this many usable roster rows (0 = all)")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}
