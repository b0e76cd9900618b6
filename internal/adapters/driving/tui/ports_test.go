package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports
	assert.ErrorIs(t, nilPorts.Validate(), ErrMissingQAService)
	assert.ErrorIs(t, (&Ports{Analysis: &mockAnalysisService{}}).Validate(), ErrMissingQAService)
	assert.NoError(t, (&Ports{QA: &mockQAService{}}).Validate())
}
