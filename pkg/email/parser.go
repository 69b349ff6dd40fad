package email

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// Message is the textual content of an RFC 5322 message
type Message struct {
	From    string
	Subject string
	Body    string
	Headers map[string]string
}

// Text returns the subject and body joined by a newline, the form that gets tokenized
func (m *Message) Text() string {
	if m.Subject == "" {
		return m.Body
	}
	return m.Subject + "\n" + m.Body
}

// Parser extracts text content from messages
type Parser struct {
	decoder *mime.WordDecoder
}

// NewParser creates a new email parser
func NewParser() *Parser {
	return &Parser{decoder: new(mime.WordDecoder)}
}

// ParseBytes parses a message held in memory
func (p *Parser) ParseBytes(data []byte) (*Message, error) {
	return p.Parse(bytes.NewReader(data))
}

// Parse parses a message from a reader
func (p *Parser) Parse(reader io.Reader) (*Message, error) {
	msg, err := mail.ReadMessage(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	m := &Message{
		From:    msg.Header.Get("From"),
		Subject: p.decodeHeader(msg.Header.Get("Subject")),
		Headers: make(map[string]string),
	}

	for key, values := range msg.Header {
		m.Headers[key] = strings.Join(values, "; ")
	}

	if err := p.parseBody(msg.Header.Get("Content-Type"), msg.Body, m); err != nil {
		return nil, fmt.Errorf("failed to parse body: %w", err)
	}

	return m, nil
}

func (p *Parser) decodeHeader(value string) string {
	decoded, err := p.decoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// parseBody keeps text parts and drops attachments
func (p *Parser) parseBody(contentType string, body io.Reader, m *Message) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if contentType == "" || err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		content, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		m.Body = string(content)
		return nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return fmt.Errorf("multipart message without boundary")
	}

	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		partType := part.Header.Get("Content-Type")
		disposition := part.Header.Get("Content-Disposition")
		if strings.Contains(disposition, "attachment") || (partType != "" && !strings.HasPrefix(partType, "text/")) {
			part.Close()
			continue
		}

		content, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			continue
		}

		if m.Body == "" {
			m.Body = string(content)
		} else {
			m.Body += "\n" + string(content)
		}
	}

	return nil
}
