package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/loykin/modelfetch/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded fetch runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.Context(), viper.GetViper(), cmd.OutOrStdout())
	},
}

func runHistory(ctx context.Context, v *viper.Viper, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		if _, err := os.Stat(cfg.History.Path); errors.Is(err, fs.ErrNotExist) {
			_, _ = fmt.Fprintln(w, "history disabled")
			return nil
		}
	}
	st, err := store.OpenWithTable(cfg.History.Path, cfg.History.Table)
	if err != nil {
		return fmt.Errorf("open history %s: %w", cfg.History.Path, err)
	}
	defer func() { _ = st.Close() }()

	runs, err := st.Recent(ctx, v.GetInt("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tRESULT\tSTATUS\tMODELS\tBYTES\tOUTPUT\tERROR")
	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "failed:" + r.Stage
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), result, r.StatusCode, r.Items, r.Bytes, r.OutputPath, r.Error)
	}
	return tw.Flush()
}
