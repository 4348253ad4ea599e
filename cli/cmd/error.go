package cmd

import "github.com/ardnew/ruiner/template"

// Sentinel errors.
var (
	ErrWriteOutput = template.NewError("failed to write output")
	ErrWriteConfig = template.NewError("failed to write configuration file")
	ErrFileExists  = template.NewError("file exists")
	ErrLintFailed  = template.NewError("lint reported errors")
	ErrReadInput   = template.NewError("failed to read template")
	ErrFormat      = template.NewError("unsupported format")
)
