package agent

import (
	"context"
	"fmt"
	"log/slog"

	"ada/internal/domain"
)

// Classifier asks the oracle for the category of an input. It never fails:
// any oracle problem yields the general category with Fallback set.
type Classifier struct {
	oracle  domain.Oracle
	workDir string
	logger  *slog.Logger
}

func NewClassifier(oracle domain.Oracle, workDir string, logger *slog.Logger) *Classifier {
	return &Classifier{oracle: oracle, workDir: workDir, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, input string) domain.Intent {
	resp, err := c.oracle.Classify(ctx, domain.ClassifyRequest{
		Input:      input,
		Categories: domain.Categories,
		WorkingDir: c.workDir,
	})
	if err != nil {
		c.logger.Warn("classification failed, falling back to general", "err", err)
		return fallback(input, &domain.OracleError{Op: "classify", Err: err})
	}

	category, ok := domain.ParseCategory(resp.Category)
	if !ok {
		c.logger.Warn("oracle returned unknown category", "category", resp.Category)
		return fallback(input, &domain.OracleError{
			Op:  "classify",
			Err: fmt.Errorf("unknown category %q", resp.Category),
		})
	}

	c.logger.Debug("classified input", "category", category)
	return domain.Intent{Category: category, Input: input}
}

func fallback(input string, err error) domain.Intent {
	return domain.Intent{
		Category: domain.CategoryGeneral,
		Input:    input,
		Fallback: true,
		Err:      err,
	}
}
