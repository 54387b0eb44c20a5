package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultInterpreters are tried in order when no interpreter is configured.
var DefaultInterpreters = []string{"python3", "python"}

// DefaultAttributes are the module attributes read on every probe.
var DefaultAttributes = []string{"__version__"}

// resultMarker prefixes the line the import script writes its result on.
// Modules may print while importing, so the result is the last marked line.
const resultMarker = "__CHECKENV_RESULT__"

// importScript imports sys.argv[1] and reports the requested attributes.
// Any exception raised while importing is a load failure.
const importScript = `import importlib, json, sys
name = sys.argv[1]
try:
    mod = importlib.import_module(name)
except Exception as err:
    out = {"ok": False, "type": type(err).__name__, "error": str(err)}
else:
    attrs = {}
    for attr in sys.argv[2:]:
        if hasattr(mod, attr):
            attrs[attr] = str(getattr(mod, attr))
    out = {"ok": True, "attrs": attrs}
sys.stdout.write("\n` + resultMarker + `" + json.dumps(out) + "\n")
`

// ErrInterpreterNotFound is returned when no Python interpreter can be found.
var ErrInterpreterNotFound = errors.New("python interpreter not found")

// PythonProber loads Python packages by importing them in a child
// interpreter process.
type PythonProber struct {
	interpreter string
	attributes  []string
	logger      *slog.Logger
}

// PythonOption configures a PythonProber.
type PythonOption func(*PythonProber)

// WithAttributes adds module attributes to read on every probe.
func WithAttributes(attrs ...string) PythonOption {
	return func(p *PythonProber) {
		for _, a := range attrs {
			if a != "" && !contains(p.attributes, a) {
				p.attributes = append(p.attributes, a)
			}
		}
	}
}

// WithLogger sets the logger for probe diagnostics.
func WithLogger(logger *slog.Logger) PythonOption {
	return func(p *PythonProber) {
		p.logger = logger
	}
}

// NewPythonProber resolves the interpreter and creates a prober. An empty
// interpreter tries DefaultInterpreters in order.
func NewPythonProber(interpreter string, opts ...PythonOption) (*PythonProber, error) {
	path, err := ResolveInterpreter(interpreter)
	if err != nil {
		return nil, err
	}

	p := &PythonProber{
		interpreter: path,
		attributes:  append([]string(nil), DefaultAttributes...),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ResolveInterpreter finds the interpreter executable on PATH.
func ResolveInterpreter(interpreter string) (string, error) {
	candidates := DefaultInterpreters
	if interpreter != "" {
		candidates = []string{interpreter}
	}

	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrInterpreterNotFound, strings.Join(candidates, ", "))
}

// Interpreter returns the resolved interpreter path.
func (p *PythonProber) Interpreter() string {
	return p.interpreter
}

// Probe implements Prober.
func (p *PythonProber) Probe(ctx context.Context, name string) (Handle, error) {
	args := append([]string{"-c", importScript, name}, p.attributes...)
	cmd := exec.CommandContext(ctx, p.interpreter, args...)
	// Importing must not leave bytecode caches behind.
	cmd.Env = append(os.Environ(), "PYTHONDONTWRITEBYTECODE=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	res, ok := parseResult(stdout.Bytes())
	if !ok {
		// The interpreter died before reporting, e.g. a segfault in an
		// extension module. That is still a failure to load the component.
		detail := lastLine(stderr.String())
		if detail == "" && runErr != nil {
			detail = runErr.Error()
		}
		p.logger.Debug("probe produced no result",
			slog.String("component", name),
			slog.String("stderr", detail))
		return nil, &LoadError{Component: name, Detail: detail, Cause: runErr}
	}

	if !res.OK {
		p.logger.Debug("import failed",
			slog.String("component", name),
			slog.String("exception", res.Type),
			slog.String("error", res.Error))
		return nil, &LoadError{Component: name, Detail: res.Error}
	}

	return Attributes(res.Attrs), nil
}

type importResult struct {
	OK    bool              `json:"ok"`
	Type  string            `json:"type"`
	Error string            `json:"error"`
	Attrs map[string]string `json:"attrs"`
}

func parseResult(out []byte) (importResult, bool) {
	var (
		res   importResult
		found bool
	)
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, resultMarker) {
			continue
		}
		var r importResult
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, resultMarker)), &r); err != nil {
			continue
		}
		res, found = r, true
	}
	return res, found
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
