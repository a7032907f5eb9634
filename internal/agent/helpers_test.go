package agent

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"ada/internal/domain"
	"ada/internal/tool"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeOracle scripts oracle answers and counts calls.
type fakeOracle struct {
	mu          sync.Mutex
	category    string
	classifyErr error
	selectResp  domain.SelectResponse
	selectErr   error

	classifyCalls int
	selectCalls   int
	lastSelect    domain.SelectRequest
}

func (f *fakeOracle) Classify(ctx context.Context, req domain.ClassifyRequest) (domain.ClassifyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classifyCalls++
	if f.classifyErr != nil {
		return domain.ClassifyResponse{}, f.classifyErr
	}
	return domain.ClassifyResponse{Category: f.category}, nil
}

func (f *fakeOracle) SelectTool(ctx context.Context, req domain.SelectRequest) (domain.SelectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	f.lastSelect = req
	if f.selectErr != nil {
		return domain.SelectResponse{}, f.selectErr
	}
	return f.selectResp, nil
}

func (f *fakeOracle) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classifyCalls + f.selectCalls
}

// spyTool records whether Execute was reached.
type spyTool struct {
	name     string
	category domain.Category
	schema   domain.Schema
	out      domain.Output
	err      error
	panicMsg string
	executed int
}

func (s *spyTool) Name() string              { return s.name }
func (s *spyTool) Description() string       { return "spy " + s.name }
func (s *spyTool) Category() domain.Category { return s.category }
func (s *spyTool) Schema() domain.Schema     { return s.schema }
func (s *spyTool) Execute(ctx context.Context, args map[string]any) (domain.Output, error) {
	s.executed++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.out, s.err
}

func lookPathOnly(known ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, k := range known {
			if k == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func testRegistry(tools ...domain.Tool) *tool.Registry {
	reg := tool.NewRegistry(testLogger())
	reg.MustRegister(tools...)
	reg.Freeze()
	return reg
}
