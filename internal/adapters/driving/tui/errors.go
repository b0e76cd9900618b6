package tui

import "errors"

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("tui: qa service is required")

// ErrMissingSource is returned when no document URL is given.
var ErrMissingSource = errors.New("tui: document url is required")

// ErrAnalysisUnavailable is shown when summary or risk keys are used without an analysis service.
var ErrAnalysisUnavailable = errors.New("tui: analysis is not available")
