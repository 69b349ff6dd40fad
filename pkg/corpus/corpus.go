// Package corpus supplies labelled training documents to the model builder.
package corpus

import (
	"context"
	"errors"
	"fmt"
)

// Class labels a training document
type Class string

const (
	Spam Class = "spam"
	Ham  Class = "ham"
)

// ErrUnknownClass is returned for a label other than Spam or Ham
var ErrUnknownClass = errors.New("unknown class")

// ParseClass converts a label to a Class
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case Spam, Ham:
		return Class(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// Other returns the counter class
func (c Class) Other() Class {
	if c == Spam {
		return Ham
	}
	return Spam
}

// Document is a single training sample. Read may fail; the builder
// skips the content of unreadable documents.
type Document interface {
	Name() string
	Read() ([]byte, error)
}

// Source enumerates the documents of one class. The returned order is stable.
type Source interface {
	Documents(ctx context.Context, class Class) ([]Document, error)
}

type textDocument struct {
	name string
	text string
}

func (d textDocument) Name() string { return d.name }

func (d textDocument) Read() ([]byte, error) { return []byte(d.text), nil }

// Text wraps an in-memory string as a Document
func Text(name, text string) Document {
	return textDocument{name: name, text: text}
}
