package mcp

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/checkenv/internal/config"
	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/preflight"
	"github.com/Aman-CERP/checkenv/internal/probe"
	"github.com/Aman-CERP/checkenv/pkg/version"
	"github.com/Aman-CERP/checkenv/pkg/versioncmp"
)

// ProberFactory creates the prober for one check. attrs lists the module
// attributes the checker will read. It returns the prober and a display
// name for the interpreter.
type ProberFactory func(interpreter string, attrs []string) (probe.Prober, string, error)

// Server is the MCP server for checkenv.
// It lets editor assistants ask whether the workshop environment is ready.
type Server struct {
	mcp       *mcp.Server
	config    *config.Config
	newProber ProberFactory
	goos      string
	logger    *slog.Logger

	// Checks spawn interpreter processes; one at a time.
	mu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithProberFactory replaces the Python prober, e.g. with a static one.
func WithProberFactory(f ProberFactory) Option {
	return func(s *Server) {
		s.newProber = f
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGOOS sets the platform used to drop skipped requirements.
func WithGOOS(goos string) Option {
	return func(s *Server) {
		s.goos = goos
	}
}

// NewServer creates a new MCP server. A nil cfg uses the defaults.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		goos:   runtime.GOOS,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newProber == nil {
		s.newProber = s.pythonProber
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    version.Name,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// pythonProber is the default ProberFactory.
func (s *Server) pythonProber(interpreter string, attrs []string) (probe.Prober, string, error) {
	p, err := probe.NewPythonProber(interpreter,
		probe.WithAttributes(attrs...),
		probe.WithLogger(s.logger))
	if err != nil {
		return nil, "", cerrors.New(cerrors.ErrCodeInterpreterNotFound, err.Error(), err).
			WithSuggestion("set python.interpreter or CHECKENV_PYTHON")
	}
	return p, p.Interpreter(), nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return version.Name, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: toolCheckEnvironment, Description: checkEnvironmentDescription},
		{Name: toolListRequirements, Description: listRequirementsDescription},
	}
}

// CallTool invokes a tool by name with JSON-style arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case toolCheckEnvironment:
		var in CheckInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.checkEnvironment(ctx, in)
	case toolListRequirements:
		var in ListRequirementsInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return s.listRequirements(in)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs(args map[string]any, dst any) error {
	if len(args) == 0 {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return NewInvalidParamsError(err.Error())
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return NewInvalidParamsError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        toolCheckEnvironment,
		Description: checkEnvironmentDescription,
	}, s.mcpCheckHandler)
	s.logger.Debug("Registered tool", slog.String("name", toolCheckEnvironment))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        toolListRequirements,
		Description: listRequirementsDescription,
	}, s.mcpListRequirementsHandler)
	s.logger.Debug("Registered tool", slog.String("name", toolListRequirements))

	s.logger.Info("MCP tools registered", slog.Int("count", 2))
}

// mcpCheckHandler is the MCP SDK handler for the check_environment tool.
func (s *Server) mcpCheckHandler(ctx context.Context, _ *mcp.CallToolRequest, input CheckInput) (
	*mcp.CallToolResult,
	CheckOutput,
	error,
) {
	out, err := s.checkEnvironment(ctx, input)
	if err != nil {
		return nil, CheckOutput{}, MapError(err)
	}
	return nil, *out, nil
}

// mcpListRequirementsHandler is the MCP SDK handler for the
// list_requirements tool.
func (s *Server) mcpListRequirementsHandler(_ context.Context, _ *mcp.CallToolRequest, input ListRequirementsInput) (
	*mcp.CallToolResult,
	ListRequirementsOutput,
	error,
) {
	out, err := s.listRequirements(input)
	if err != nil {
		return nil, ListRequirementsOutput{}, MapError(err)
	}
	return nil, *out, nil
}

// checkEnvironment runs one check. Configuration problems fail the call
// before any component is imported; component failures are results.
func (s *Server) checkEnvironment(ctx context.Context, input CheckInput) (*CheckOutput, error) {
	start := time.Now()
	requestID := generateRequestID()

	set, profile, err := s.requirementSet(input)
	if err != nil {
		return nil, err
	}

	schemeName := input.Scheme
	if schemeName == "" {
		schemeName = s.config.Check.Scheme
	}
	scheme, err := versioncmp.Lookup(schemeName)
	if err != nil {
		return nil, cerrors.ValidationError(err.Error(), err)
	}

	strategies := preflight.DefaultStrategies().WithOverrides(set)

	s.mu.Lock()
	defer s.mu.Unlock()

	prober, interpreter, err := s.newProber(s.config.Python.Interpreter, strategies.Attributes())
	if err != nil {
		return nil, err
	}

	s.logger.Info("check started",
		slog.String("request_id", requestID),
		slog.String("profile", profile),
		slog.Int("components", set.Len()),
		slog.String("scheme", scheme.Name()))

	var report bytes.Buffer
	checker := preflight.New(prober,
		preflight.WithOutput(&report),
		preflight.WithStrategies(strategies),
		preflight.WithScheme(scheme),
		preflight.WithLogger(s.logger))
	summary := checker.RunChecks(ctx, set)

	if err := ctx.Err(); err != nil {
		s.logger.Warn("check interrupted",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("check completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("all_satisfied", summary.AllSatisfied))

	out := &CheckOutput{
		Profile:      profile,
		Interpreter:  interpreter,
		AllSatisfied: summary.AllSatisfied,
		Results:      make([]ResultOutput, 0, len(summary.Results)),
		Report:       report.String(),
	}
	for _, r := range summary.Results {
		out.Results = append(out.Results, toResultOutput(r))
	}
	return out, nil
}

// requirementSet resolves the requirements for a check: explicit input
// requirements, then the requested profile, then the configuration.
func (s *Server) requirementSet(input CheckInput) (*preflight.RequirementSet, string, error) {
	if len(input.Requirements) > 0 {
		entries := make([]config.RequirementEntry, 0, len(input.Requirements))
		for _, r := range input.Requirements {
			entries = append(entries, config.RequirementEntry{
				Name:        r.Name,
				MinVersion:  r.MinVersion,
				VersionAttr: r.VersionAttr,
				NoVersion:   r.NoVersion,
			})
		}
		set, err := config.BuildRequirementSet(entries, s.goos)
		if err != nil {
			return nil, "", invalidRequirements(err)
		}
		return set, "", nil
	}

	if input.Profile != "" {
		p, err := config.LoadProfile(input.Profile)
		if err != nil {
			return nil, "", err
		}
		set, err := p.RequirementSet(s.goos)
		return set, p.Name, err
	}

	set, err := s.config.RequirementSet(s.goos)
	if err != nil {
		return nil, "", err
	}
	if len(s.config.Requirements) > 0 {
		return set, "", nil
	}
	return set, s.config.Check.Profile, nil
}

// invalidRequirements reports client-supplied requirements as bad params
// rather than bad configuration.
func invalidRequirements(err error) error {
	var ce *cerrors.CheckError
	if errors.As(err, &ce) {
		return NewInvalidParamsError(ce.Message)
	}
	return NewInvalidParamsError(err.Error())
}

func toResultOutput(r preflight.CheckResult) ResultOutput {
	return ResultOutput{
		Name:      r.Name,
		Outcome:   r.Outcome.String(),
		Installed: r.Installed,
		Minimum:   r.Minimum,
		Detail:    r.Detail,
		Line:      r.Line(),
	}
}

// listRequirements describes the active requirement table without
// importing anything. It resolves the table the same way a check does.
func (s *Server) listRequirements(input ListRequirementsInput) (*ListRequirementsOutput, error) {
	set, profile, err := s.requirementSet(CheckInput{Profile: input.Profile})
	if err != nil {
		return nil, err
	}

	out := &ListRequirementsOutput{
		Profile:      profile,
		Profiles:     config.ProfileNames(),
		Requirements: make([]RequirementOutput, 0, set.Len()),
	}
	if profile != "" {
		if p, err := config.LoadProfile(profile); err == nil {
			out.Description = p.Description
		}
	}

	strategies := preflight.DefaultStrategies().WithOverrides(set)
	for _, r := range set.Requirements() {
		out.Requirements = append(out.Requirements, RequirementOutput{
			Name:       r.Name,
			MinVersion: r.MinVersion,
			Version:    strategies.Lookup(r.Name).String(),
		})
	}
	return out, nil
}

// Serve runs the server over stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error",
			slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
