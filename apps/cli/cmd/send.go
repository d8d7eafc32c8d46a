package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/hitcurl/packages/capture"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/engine"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/env"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/history"
	"github.com/abdul-hamid-achik/hitcurl/packages/output"
	"github.com/abdul-hamid-achik/hitcurl/packages/patch"
	"github.com/abdul-hamid-achik/hitcurl/packages/stats"
)

var sendCmd = &cobra.Command{
	Use:   "send <file>...",
	Short: "Send the requests in one or more request documents",
	Long: `Send requests described in JSON or YAML request documents.

Each document is resolved against the active environment (or --env), compiled
into a curl command line and executed. The response is printed with its status,
timing and body.

Examples:
  hitcurl send get-user.yaml
  hitcurl send create-user.json --env staging -v
  hitcurl send login.yaml --extract token=data.token --extract status
  hitcurl send create-user.yaml --set name=Ada --set age=36
  hitcurl send health.yaml --repeat 50 --rate 10
  hitcurl send api.yaml --transport native --timeout 5s --location
  hitcurl send api.yaml --watch`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: sendCommand,
}

// requestFlags are shared by every command that sends requests.
type requestFlags struct {
	env       string
	envFile   string
	transport string
	timeout   string
	curlPath  string
	proxy     string
	location  bool
	output    string
	extract   []string
	set       []string
	repeat    int
	rate      float64
	fail      bool
	noHistory bool
	verbose   bool
}

var (
	sendFlags requestFlags
	watchFlag bool
)

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVarP(&f.env, "env", "e", getEnvString("HITCURL_ENV", ""), "Environment to resolve variables from (default: the active one) (env: HITCURL_ENV)")
	cmd.Flags().StringVar(&f.envFile, "env-file", getEnvString("HITCURL_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITCURL_ENV_FILE)")
	cmd.Flags().StringVar(&f.transport, "transport", getEnvString("HITCURL_TRANSPORT", ""), "Transport: curl or native (env: HITCURL_TRANSPORT)")
	cmd.Flags().StringVar(&f.timeout, "timeout", getEnvString("HITCURL_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HITCURL_TIMEOUT)")
	cmd.Flags().StringVar(&f.curlPath, "curl", getEnvString("HITCURL_CURL", ""), "Path to the curl binary (env: HITCURL_CURL)")
	cmd.Flags().StringVar(&f.proxy, "proxy", getEnvString("HITCURL_PROXY", ""), "Proxy URL for HTTP requests (env: HITCURL_PROXY)")
	cmd.Flags().BoolVarP(&f.location, "location", "L", getEnvBool("HITCURL_LOCATION", false), "Follow redirects (env: HITCURL_LOCATION)")
	cmd.Flags().StringVarP(&f.output, "output", "o", getEnvString("HITCURL_OUTPUT", output.FormatConsole), "Output format: console, json (env: HITCURL_OUTPUT)")
	cmd.Flags().StringArrayVarP(&f.extract, "extract", "x", nil, "Extract a value: [name=]path, e.g. id=data.id, status, header.location")
	cmd.Flags().StringArrayVar(&f.set, "set", nil, "Set a JSON body field before sending: path=value, e.g. user.name=Ada, tags.-1=new")
	cmd.Flags().IntVarP(&f.repeat, "repeat", "n", getEnvInt("HITCURL_REPEAT", 1), "Send each request this many times and print a latency summary (env: HITCURL_REPEAT)")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "Maximum requests per second when repeating (0 = unlimited)")
	cmd.Flags().BoolVar(&f.fail, "fail", getEnvBool("HITCURL_FAIL", false), "Exit with status 1 when a response has status >= 400 (env: HITCURL_FAIL)")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", getEnvBool("HITCURL_NO_HISTORY", false), "Do not record responses in history (env: HITCURL_NO_HISTORY)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", getEnvBool("HITCURL_VERBOSE", false), "Show the command line, response headers and every repetition (env: HITCURL_VERBOSE)")
}

func init() {
	addRequestFlags(sendCmd, &sendFlags)
	sendCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the documents for changes and send again")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := a.newSender(cmd, &sendFlags)
	if err != nil {
		return err
	}
	defer s.Close()

	run := func() error {
		reqs, err := loadRequests(args)
		if err != nil {
			return err
		}
		out, err := s.send(ctx, reqs)
		if err != nil {
			return err
		}
		return out.err(sendFlags.fail)
	}

	err = run()
	if !watchFlag {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	targets := append([]string{}, args...)
	if sendFlags.envFile != "" {
		targets = append(targets, sendFlags.envFile)
	}
	return watchFiles(ctx, cmd, targets, func() {
		if err := run(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
}

func loadRequests(paths []string) ([]*model.Request, error) {
	reqs := make([]*model.Request, 0, len(paths))
	for _, path := range paths {
		req, err := collection.LoadRequest(path)
		if err != nil {
			return nil, withExitCode(ExitParseError, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// sender resolves, executes, records and prints requests.
type sender struct {
	engine    *engine.Engine
	resolver  *env.Resolver
	history   *history.Store
	formatter output.Formatter
	extracts  []capture.Expr
	sets      []patch.Set
	repeat    int
	limiter   *rate.Limiter
	verbose   bool
	logger    zerolog.Logger
}

func (a *app) newSender(cmd *cobra.Command, f *requestFlags) (*sender, error) {
	if err := a.applyRequestFlags(f); err != nil {
		return nil, err
	}
	if f.repeat < 1 {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("--repeat must be at least 1, got %d", f.repeat))
	}
	if f.rate < 0 {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("--rate must not be negative, got %g", f.rate))
	}

	extracts := make([]capture.Expr, 0, len(f.extract))
	for _, raw := range f.extract {
		x, err := capture.ParseExpr(raw)
		if err != nil {
			return nil, withExitCode(ExitUsageError, err)
		}
		extracts = append(extracts, x)
	}

	sets := make([]patch.Set, 0, len(f.set))
	for _, raw := range f.set {
		set, err := patch.ParseSet(raw)
		if err != nil {
			return nil, withExitCode(ExitUsageError, err)
		}
		sets = append(sets, set)
	}

	formatter, err := output.New(f.output, cmd.OutOrStdout(), a.cfg.GetVerbose(), a.cfg.GetNoColor())
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}

	eng, err := a.newEngine()
	if err != nil {
		return nil, err
	}

	resolver, err := a.newResolver(f.env, f.envFile)
	if err != nil {
		return nil, err
	}

	hist, err := a.openHistory(f.noHistory)
	if err != nil {
		a.logger.Warn().Err(err).Msg("history disabled")
		hist = nil
	}

	var limiter *rate.Limiter
	if f.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(f.rate), 1)
	}

	return &sender{
		engine:    eng,
		resolver:  resolver,
		history:   hist,
		formatter: formatter,
		extracts:  extracts,
		sets:      sets,
		repeat:    f.repeat,
		limiter:   limiter,
		verbose:   a.cfg.GetVerbose(),
		logger:    a.logger,
	}, nil
}

func (s *sender) Close() {
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close history")
		}
	}
}

// outcome counts the responses of one send run.
type outcome struct {
	sent        int
	errorStatus int
	noResponse  int
}

func (o *outcome) add(resp *model.HttpResponse) {
	o.sent++
	switch {
	case resp.Status == 0:
		o.noResponse++
	case resp.IsClientError(), resp.IsServerError():
		o.errorStatus++
	}
}

func (o outcome) err(fail bool) error {
	if o.noResponse > 0 {
		return withExitCode(ExitNetworkError, fmt.Errorf("%d of %d requests got no response", o.noResponse, o.sent))
	}
	if fail && o.errorStatus > 0 {
		return withExitCode(ExitRequestFailure, fmt.Errorf("%d of %d requests returned an error status", o.errorStatus, o.sent))
	}
	return nil
}

// send executes every request s.repeat times. With more than one repetition
// only the first response of each request is printed unless verbose is set,
// followed by a latency summary.
func (s *sender) send(ctx context.Context, reqs []*model.Request) (outcome, error) {
	var out outcome
	recorder := stats.NewRecorder()
	recorder.Start()

loop:
	for _, req := range reqs {
		for i := 0; i < s.repeat; i++ {
			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					break loop
				}
			}

			resolved, err := patch.Apply(s.resolver.ResolveRequest(req), s.sets)
			if err != nil {
				return out, withExitCode(ExitUsageError, fmt.Errorf("%s: %w", req.DisplayName(), err))
			}
			inv := s.engine.Compile(resolved)
			resp := s.engine.Execute(ctx, resolved)
			if ctx.Err() != nil {
				break loop
			}

			recorder.Record(resp)
			out.add(resp)
			s.record(ctx, resolved, resp)

			if i == 0 || s.verbose {
				captures := s.capture(resp)
				s.formatter.FormatResult(&output.Result{
					Name:     resolved.Name,
					Method:   inv.EffectiveMethod(),
					URL:      inv.URL,
					Command:  inv.Redacted(),
					Response: resp,
					Captures: captures,
				})
			}
		}
	}

	recorder.Stop()
	if s.repeat > 1 {
		s.formatter.FormatSummary(recorder.Summary())
	}
	if err := s.formatter.Flush(); err != nil {
		return out, fmt.Errorf("error writing output: %w", err)
	}
	return out, nil
}

// capture evaluates the extract expressions against resp and makes every
// value available to later requests as {{name}}.
func (s *sender) capture(resp *model.HttpResponse) map[string]any {
	captures := capture.ExtractAll(resp, s.extracts)
	for _, name := range capture.Missing(s.extracts, captures) {
		s.logger.Warn().Str("extract", name).Msg("extraction matched nothing")
	}
	for name, value := range captures {
		s.resolver.SetVariable(name, capture.String(value))
	}
	return captures
}

func (s *sender) record(ctx context.Context, req *model.Request, resp *model.HttpResponse) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Add(ctx, req, resp); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record history")
	}
}
