package service

import (
	"context"

	"github.com/khoahotran/career-navigator/internal/domain/analysis"
)

type ResumeAnalyzer interface {
	// Analyze sends the PDF and target role to the Analysis Service and decodes
	// its raw response. Any transport or status failure is returned as an error.
	Analyze(ctx context.Context, resume []byte, filename, targetRole string) (*analysis.RawAnalysis, error)
}
