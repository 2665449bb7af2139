package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/models"
)

func TestService_Supported(t *testing.T) {
	svc := NewService(common.GetLogger())

	tests := []struct {
		fileName  string
		supported bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"data.CSV", true},
		{"spec.pdf", true},
		{"thread.eml", true},
		{"image.png", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.supported, svc.Supported(tt.fileName))
		})
	}
}

func TestService_ExtractPlainText(t *testing.T) {
	svc := NewService(common.GetLogger())

	text, err := svc.Extract(context.Background(), "notes.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	text, err = svc.Extract(context.Background(), "doc.md", []byte("# Heading\n\nBody"))
	require.NoError(t, err)
	assert.Equal(t, "# Heading\n\nBody", text)
}

func TestService_ExtractInvalidUTF8(t *testing.T) {
	svc := NewService(common.GetLogger())

	text, err := svc.Extract(context.Background(), "notes.txt", []byte{0x68, 0x69, 0xff, 0xfe})
	require.NoError(t, err)
	assert.Contains(t, text, "hi")
	assert.True(t, len(text) > 2)
}

func TestService_ExtractUnsupported(t *testing.T) {
	svc := NewService(common.GetLogger())

	_, err := svc.Extract(context.Background(), "image.png", []byte{0x89, 0x50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestService_ExtractEmail(t *testing.T) {
	svc := NewService(common.GetLogger())

	raw := "From: alice@example.com\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: Project kickoff notes\r\n" +
		"Date: Mon, 06 Jan 2025 10:00:00 +0000\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"We agreed the MVP targets small teams.\r\n"

	text, err := svc.Extract(context.Background(), "kickoff.eml", []byte(raw))
	require.NoError(t, err)
	assert.Contains(t, text, "Subject: Project kickoff notes")
	assert.Contains(t, text, "We agreed the MVP targets small teams.")
}

func TestAggregate(t *testing.T) {
	files := []*models.ContextFile{
		{FileName: "vision.md", ExtractedText: "The product vision."},
		{FileName: "empty.txt", ExtractedText: "   "},
		{FileName: "notes.txt", ExtractedText: "Meeting notes."},
	}

	got := Aggregate(files)
	assert.Equal(t, "=== vision.md ===\nThe product vision.\n\n=== notes.txt ===\nMeeting notes.", got)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, "", Aggregate(nil))
	assert.Equal(t, "", Aggregate([]*models.ContextFile{{FileName: "a.txt", ExtractedText: ""}}))
}
