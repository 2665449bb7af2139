package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
)

// extractEmail parses an RFC 822 message and returns its headers plus
// the concatenated text/plain parts. HTML-only messages yield just the
// header block.
func extractEmail(data []byte) (string, error) {
	mr, err := mail.CreateReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse email message: %w", err)
	}

	var builder strings.Builder

	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		builder.WriteString("Subject: " + subject + "\n")
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		builder.WriteString("From: " + from[0].String() + "\n")
	}
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		builder.WriteString("Date: " + date.Format("2006-01-02 15:04") + "\n")
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			if strings.HasPrefix(contentType, "text/plain") {
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("failed to read message body: %w", err)
				}
				builder.WriteString("\n")
				builder.Write(b)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
