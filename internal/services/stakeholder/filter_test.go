package stakeholder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
)

const filterDoc = `# Widget PRD

## Overview
For teams.

## Functional Requirements
Must export CSV.

### Edge Cases
Unicode filenames.

## Marketing Plan
Launch campaign in Q3.

## Timeline
Q3 launch.
`

func TestFilterSections_RemovesMatchingAndNested(t *testing.T) {
	got := FilterSections(filterDoc, []string{"functional requirements"})

	assert.NotContains(t, got, "Must export CSV.")
	// Nested deeper section goes with its parent
	assert.NotContains(t, got, "Edge Cases")
	assert.Contains(t, got, "For teams.")
	assert.Contains(t, got, "Q3 launch.")
}

func TestFilterSections_CaseInsensitive(t *testing.T) {
	got := FilterSections(filterDoc, []string{"MARKETING"})
	assert.NotContains(t, got, "Launch campaign")
	assert.Contains(t, got, "Must export CSV.")
}

func TestFilterSections_ResumesAtSameLevel(t *testing.T) {
	got := FilterSections(filterDoc, []string{"marketing"})
	// The section after the hidden one survives
	assert.Contains(t, got, "## Timeline")
	assert.Contains(t, got, "Q3 launch.")
}

func TestFilterSections_NoPhrases(t *testing.T) {
	assert.Equal(t, filterDoc, FilterSections(filterDoc, nil))
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line  string
		level int
		title string
	}{
		{"# Title", 1, "Title"},
		{"### Deep", 3, "Deep"},
		{"#NoSpace", 0, ""},
		{"plain text", 0, ""},
		{"####### seven", 0, ""},
	}
	for _, tt := range tests {
		level, title := headingLevel(tt.line)
		assert.Equal(t, tt.level, level, tt.line)
		assert.Equal(t, tt.title, title, tt.line)
	}
}

func TestService_Profiles(t *testing.T) {
	svc := NewService(nil, "", common.GetLogger())

	profiles := svc.Profiles()
	require.Len(t, profiles, 5)

	_, err := svc.Profile("Engineering")
	require.NoError(t, err)

	_, err = svc.Profile("intern")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestService_View(t *testing.T) {
	svc := NewService(nil, "", common.GetLogger())

	view, err := svc.View(filterDoc, "marketing")
	require.NoError(t, err)
	assert.NotContains(t, view, "Must export CSV.")
	assert.Contains(t, view, "Launch campaign")
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeLLM) Close() error                          { return nil }

func TestService_Summarize(t *testing.T) {
	svc := NewService(&fakeLLM{reply: "  A summary for leadership.  "}, "", common.GetLogger())

	summary, err := svc.Summarize(context.Background(), filterDoc, "leadership")
	require.NoError(t, err)
	assert.Equal(t, "A summary for leadership.", summary)

	noLLM := NewService(nil, "", common.GetLogger())
	_, err = noLLM.Summarize(context.Background(), filterDoc, "leadership")
	assert.ErrorIs(t, err, common.ErrUnavailable)
}
