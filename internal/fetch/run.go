package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/loykin/modelfetch/internal/common"
	"github.com/loykin/modelfetch/internal/constants"
	"github.com/loykin/modelfetch/internal/httpc"
	"github.com/loykin/modelfetch/internal/util"
)

// Options configures one run.
type Options struct {
	Endpoint   Endpoint
	OutputPath string
	Indent     string
	Client     httpc.Config
}

// Result describes a finished run. On failure the fields reached so far are set.
type Result struct {
	URL        string // masked
	OutputPath string
	StatusCode int
	Bytes      int
	Items      int
	Elapsed    time.Duration
	StartedAt  time.Time
}

// Run fetches the endpoint once and writes the pretty-printed JSON to
// opts.OutputPath. Every failure is an OperationError; no file is created
// or modified unless the whole body was received and validated.
func Run(ctx context.Context, opts Options) (Result, error) {
	res := Result{
		OutputPath: util.TrimWithDefault(opts.OutputPath, constants.DefaultOutputPath),
		StartedAt:  time.Now(),
	}

	common.RegisterSecret(opts.Endpoint.Key)
	if u, err := opts.Endpoint.URL(); err == nil {
		res.URL = common.MaskForDisplay(u)
	}

	payload, err := NewFetcher(httpc.New(opts.Client)).Fetch(ctx, opts.Endpoint)
	res.StatusCode = payload.StatusCode
	if err != nil {
		res.Elapsed = time.Since(res.StartedAt)
		return res, err
	}
	res.Items = payload.Items()

	n, err := Persist(res.OutputPath, payload, opts.Indent)
	res.Elapsed = time.Since(res.StartedAt)
	if err != nil {
		return res, fail(StageWrite, err)
	}
	res.Bytes = n

	common.GetLogger().WithComponent("fetch").WithOutput(res.OutputPath).
		Info("model list saved", "bytes", n, "models", res.Items, "elapsed", res.Elapsed)
	return res, nil
}

// SuccessMessage is the line printed after a successful run.
func SuccessMessage(path string) string {
	return "Full model list saved to " + path
}

// FailureMessage is the line printed after a failed run. Secrets are masked.
func FailureMessage(err error) string {
	return "Error: " + common.MaskForDisplay(err.Error())
}

// Report prints exactly one line describing the outcome.
func Report(w io.Writer, res Result, err error) {
	if err != nil {
		_, _ = fmt.Fprintln(w, FailureMessage(err))
		return
	}
	_, _ = fmt.Fprintln(w, SuccessMessage(res.OutputPath))
}
