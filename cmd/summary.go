package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/profile-cli/internal/model"
)

// emitSummary writes the batch summary to w. A batch with zero successfully
// processed profiles fails the command so it is distinguishable from a batch
// with partial failures.
func emitSummary(w io.Writer, summary *model.BatchSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return eris.Wrap(err, "encode summary")
	}
	if summary.Empty() {
		return eris.Errorf("no profiles processed (%d duplicates, %d failed)",
			summary.Duplicates, summary.Failed)
	}
	return nil
}
