package main

import (
	"context"
	"io"

	"github.com/loykin/modelfetch/cmd/modelfetch/config"
	"github.com/loykin/modelfetch/internal/common"
	"github.com/loykin/modelfetch/internal/fetch"
	"github.com/loykin/modelfetch/internal/store"
	"github.com/loykin/modelfetch/internal/util"
	"github.com/spf13/viper"
)

// loadConfig builds the effective configuration: defaults, then the optional
// config file, then flags and MODELFETCH_* variables.
func loadConfig(v *viper.Viper) (config.ConfigDoc, error) {
	cfg := config.Default()
	if path, ok := util.TrimEmptyCheck(v.GetString("config")); ok {
		if err := cfg.Load(path); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyOverrides(v)
	if err := cfg.SetupLogging(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FetchRunner performs one fetch-and-persist run and prints its single result line.
type FetchRunner struct {
	v      *viper.Viper
	stdout io.Writer
}

func NewFetchRunner(v *viper.Viper, stdout io.Writer) *FetchRunner {
	return &FetchRunner{v: v, stdout: stdout}
}

// Run returns an error only for configuration problems. Fetch failures are
// printed and swallowed so the process ends normally.
func (r *FetchRunner) Run(ctx context.Context) error {
	cfg, err := loadConfig(r.v)
	if err != nil {
		return err
	}
	opts, err := cfg.FetchOptions()
	if err != nil {
		return err
	}

	res, runErr := fetch.Run(ctx, opts)
	fetch.Report(r.stdout, res, runErr)
	if runErr != nil {
		common.LogDebug("fetch failed", "component", "main", "stage", string(fetch.StageOf(runErr)), "error", runErr)
	}

	if cfg.History.Enabled {
		recordHistory(ctx, cfg.History, res, runErr)
	}
	return nil
}

// recordHistory never fails the run; problems are logged as warnings.
func recordHistory(ctx context.Context, hc config.HistoryConfig, res fetch.Result, runErr error) {
	logger := common.GetLogger().WithStore("sqlite")
	st, err := store.OpenWithTable(hc.Path, hc.Table)
	if err != nil {
		logger.Warn("could not open history store", "path", hc.Path, "error", err)
		return
	}
	defer func() { _ = st.Close() }()

	run := store.Run{
		StartedAt:  res.StartedAt,
		URL:        res.URL,
		OutputPath: res.OutputPath,
		StatusCode: res.StatusCode,
		Bytes:      res.Bytes,
		Items:      res.Items,
		Elapsed:    res.Elapsed,
		Success:    runErr == nil,
	}
	if runErr != nil {
		run.Stage = string(fetch.StageOf(runErr))
		run.Error = runErr.Error()
	}
	if _, err := st.Record(ctx, run); err != nil {
		logger.Warn("could not record run", "error", err)
	}
}
