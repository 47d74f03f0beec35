// Package report forwards unexpected errors and panics to Rollbar when a token is configured.
package report

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rollbar/rollbar-go"
)

// Reporter 上报错误。
type Reporter interface {
	Error(r *http.Request, err error)
	Panic(r *http.Request, recovered any)
	Close()
}

// Options configures the Rollbar client.
type Options struct {
	Token       string
	Environment string
	CodeVersion string
	ServerHost  string
}

// New 在 token 为空时返回只写日志的 Reporter。
func New(opts Options, logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Token == "" {
		return &logReporter{logger: logger}
	}

	rollbar.SetToken(opts.Token)
	rollbar.SetEnvironment(opts.Environment)
	if opts.CodeVersion != "" {
		rollbar.SetCodeVersion(opts.CodeVersion)
	}
	if opts.ServerHost != "" {
		rollbar.SetServerHost(opts.ServerHost)
	}
	rollbar.SetEnabled(true)
	return &rollbarReporter{logger: logger}
}

type rollbarReporter struct {
	logger *slog.Logger
}

func (r *rollbarReporter) Error(req *http.Request, err error) {
	r.logger.Error("request failed", "path", pathOf(req), "error", err)
	if req != nil {
		rollbar.RequestError(rollbar.ERR, req, err)
		return
	}
	rollbar.Error(err)
}

func (r *rollbarReporter) Panic(req *http.Request, recovered any) {
	err := asError(recovered)
	r.logger.Error("panic recovered", "path", pathOf(req), "error", err)
	if req != nil {
		rollbar.RequestError(rollbar.CRIT, req, err)
		return
	}
	rollbar.Critical(err)
}

func (r *rollbarReporter) Close() {
	rollbar.Wait()
}

type logReporter struct {
	logger *slog.Logger
}

func (l *logReporter) Error(req *http.Request, err error) {
	l.logger.Error("request failed", "path", pathOf(req), "error", err)
}

func (l *logReporter) Panic(req *http.Request, recovered any) {
	l.logger.Error("panic recovered", "path", pathOf(req), "error", asError(recovered))
}

func (l *logReporter) Close() {}

func asError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", recovered)
}

func pathOf(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return req.URL.Path
}
