package corpus

import (
	"context"
	"fmt"
)

// MemorySource serves documents held in memory
type MemorySource struct {
	docs map[Class][]Document
}

// NewMemorySource creates a source from spam and ham texts
func NewMemorySource(spam, ham []string) *MemorySource {
	s := &MemorySource{docs: make(map[Class][]Document)}
	for i, text := range spam {
		s.docs[Spam] = append(s.docs[Spam], Text(fmt.Sprintf("spam-%d", i), text))
	}
	for i, text := range ham {
		s.docs[Ham] = append(s.docs[Ham], Text(fmt.Sprintf("ham-%d", i), text))
	}
	return s
}

// Add appends a document to a class
func (s *MemorySource) Add(class Class, doc Document) {
	s.docs[class] = append(s.docs[class], doc)
}

// Documents returns the documents of class
func (s *MemorySource) Documents(ctx context.Context, class Class) ([]Document, error) {
	if _, err := ParseClass(string(class)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := make([]Document, len(s.docs[class]))
	copy(docs, s.docs[class])
	return docs, nil
}
