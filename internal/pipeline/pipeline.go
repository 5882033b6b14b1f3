// Package pipeline sequences document anonymization: load the rule set,
// pick the adapter for each file, transform every text unit, write the
// result next to the others in the output directory.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/docveil/docveil/internal/anonymizer"
	"github.com/docveil/docveil/internal/document"
	"github.com/docveil/docveil/internal/events"
	"github.com/docveil/docveil/internal/logger"
	"github.com/docveil/docveil/internal/rules"
	"go.uber.org/zap"
)

// Status is the outcome of one file.
type Status string

const (
	StatusRedacted Status = "redacted"
	StatusFailed   Status = "failed"
)

// Result is the per-file outcome of a run.
type Result struct {
	Path    string `json:"path"`
	Output  string `json:"output,omitempty"`
	Status  Status `json:"status"`
	Matches int    `json:"matches"`
	Err     error  `json:"-"`
}

// Reason returns a short failure description, empty for redacted files.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	var docErr *document.Error
	if errors.As(r.Err, &docErr) {
		return docErr.Kind.String()
	}
	return r.Err.Error()
}

// Pipeline maps source documents to redacted copies in the output directory.
// It holds only the rule file location; the rule set itself is loaded and
// compiled fresh at the start of every run so stale rules can never apply.
type Pipeline struct {
	rulesPath string
	outputDir string
	logger    *logger.Logger
	hub       *events.Hub
}

// New creates a pipeline. hub may be nil when nobody listens for events.
func New(rulesPath, outputDir string, log *logger.Logger, hub *events.Hub) *Pipeline {
	return &Pipeline{
		rulesPath: rulesPath,
		outputDir: outputDir,
		logger:    log.WithComponent("pipeline"),
		hub:       hub,
	}
}

// loadRuleSet loads and compiles the rule file. Any failure here is fatal
// for the whole run: without valid rules there is no safe processing.
func (p *Pipeline) loadRuleSet() (*anonymizer.RuleSet, error) {
	specs, err := rules.Load(p.rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	rs, err := anonymizer.Compile(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}
	p.logger.Debug("Rule set loaded",
		zap.String("rules_path", p.rulesPath),
		zap.Int("rule_count", rs.Len()),
	)
	return rs, nil
}

// Process anonymizes a single file and returns the output path. The output
// keeps the source base name inside the pipeline's output directory.
func (p *Pipeline) Process(inputPath string) (string, error) {
	rs, err := p.loadRuleSet()
	if err != nil {
		return "", err
	}
	result := p.processFile(inputPath, rs)
	p.report(result)
	if result.Err != nil {
		return "", result.Err
	}
	return result.Output, nil
}

// Run anonymizes a batch of files with the same rule set, one result per
// input in order. A failure on one file never aborts the others; a rule-set
// failure fails them all before any document is touched.
func (p *Pipeline) Run(paths []string) []Result {
	results := make([]Result, 0, len(paths))

	rs, err := p.loadRuleSet()
	if err != nil {
		p.logger.Error("Rule set unavailable, failing run", zap.Error(err))
		for _, path := range paths {
			result := Result{Path: path, Status: StatusFailed, Err: err}
			p.report(result)
			results = append(results, result)
		}
		return results
	}

	for _, path := range paths {
		result := p.processFile(path, rs)
		p.report(result)
		results = append(results, result)
	}
	return results
}

// processFile runs one document through its adapter: extract units, apply
// the rules to each unit independently, write the transformed units back.
func (p *Pipeline) processFile(inputPath string, rs *anonymizer.RuleSet) Result {
	result := Result{Path: inputPath, Status: StatusFailed}

	adapter, err := document.ForPath(inputPath)
	if err != nil {
		result.Err = err
		return result
	}

	units, err := adapter.ExtractTextUnits(inputPath)
	if err != nil {
		result.Err = err
		return result
	}

	redacted := make([]string, len(units))
	for i, unit := range units {
		text, records := anonymizer.Anonymize(unit, rs)
		redacted[i] = text
		result.Matches += len(records)
	}

	outputPath := filepath.Join(p.outputDir, filepath.Base(inputPath))
	if err := adapter.WriteTextUnits(inputPath, outputPath, redacted); err != nil {
		result.Err = err
		return result
	}

	result.Status = StatusRedacted
	result.Output = outputPath
	return result
}

// report emits one log line and one websocket event per file result.
func (p *Pipeline) report(result Result) {
	if result.Err != nil {
		p.logger.Warn("File failed",
			zap.String("path", result.Path),
			zap.String("reason", result.Reason()),
			zap.Error(result.Err),
		)
	} else {
		p.logger.Info("File redacted",
			zap.String("path", result.Path),
			zap.String("output", result.Output),
			zap.Int("matches", result.Matches),
		)
	}

	if p.hub != nil {
		p.hub.BroadcastFileResult(events.FileEvent{
			Path:    filepath.Base(result.Path),
			Status:  string(result.Status),
			Matches: result.Matches,
			Reason:  result.Reason(),
		})
	}
}
