package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseClass(t *testing.T) {
	for _, s := range []string{"spam", "ham"} {
		if c, err := ParseClass(s); err != nil || string(c) != s {
			t.Errorf("ParseClass(%q) = %q, %v", s, c, err)
		}
	}

	if _, err := ParseClass("eggs"); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Expected ErrUnknownClass, got %v", err)
	}

	if Spam.Other() != Ham || Ham.Other() != Spam {
		t.Error("Other should swap spam and ham")
	}
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource([]string{"free money"}, []string{"meeting", "project update"})
	ctx := context.Background()

	spam, err := src.Documents(ctx, Spam)
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(spam) != 1 || spam[0].Name() != "spam-0" {
		t.Fatalf("Unexpected spam documents: %v", spam)
	}
	data, err := spam[0].Read()
	if err != nil || string(data) != "free money" {
		t.Errorf("Read = %q, %v", data, err)
	}

	src.Add(Ham, Text("extra", "lunch"))
	ham, _ := src.Documents(ctx, Ham)
	if len(ham) != 3 {
		t.Errorf("Expected 3 ham documents, got %d", len(ham))
	}

	if _, err := src.Documents(ctx, Class("eggs")); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Expected ErrUnknownClass, got %v", err)
	}
}

func TestMemorySourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMemorySource(nil, nil).Documents(ctx, Spam); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	spamDir := filepath.Join(root, "spams")
	hamDir := filepath.Join(root, "hams")

	writeFile(t, filepath.Join(spamDir, "b.txt"), "free prize winner")
	writeFile(t, filepath.Join(spamDir, "a.txt"), "free money now")
	writeFile(t, filepath.Join(spamDir, "nested", "c.txt"), "claim prize")
	writeFile(t, filepath.Join(spamDir, "notes.md"), "ignored")
	writeFile(t, filepath.Join(hamDir, "1.txt"), "meeting tomorrow")

	src := NewDirSource(spamDir, hamDir, WithExtensions(".txt"))
	ctx := context.Background()

	docs, err := src.Documents(ctx, Spam)
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Expected 3 spam documents, got %d", len(docs))
	}

	expected := []string{"a.txt", "b.txt", filepath.Join("nested", "c.txt")}
	for i, doc := range docs {
		if doc.Name() != filepath.Join(spamDir, expected[i]) {
			t.Errorf("docs[%d] = %s, expected %s", i, doc.Name(), expected[i])
		}
	}

	data, err := docs[0].Read()
	if err != nil || string(data) != "free money now" {
		t.Errorf("Read = %q, %v", data, err)
	}

	ham, err := src.Documents(ctx, Ham)
	if err != nil || len(ham) != 1 {
		t.Errorf("Expected 1 ham document, got %d (%v)", len(ham), err)
	}
}

func TestDirSourceUnreadableDocument(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.txt")
	writeFile(t, path, "free")

	docs, err := NewDirSource(root, "").Documents(context.Background(), Spam)
	if err != nil || len(docs) != 1 {
		t.Fatalf("Documents = %d, %v", len(docs), err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := docs[0].Read(); err == nil {
		t.Error("Expected read error for removed file")
	}
}

func TestDirSourceEmailParsing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1.eml"), "From: x@example.com\r\nSubject: Free prize\r\n\r\nclaim now\r\n")

	docs, err := NewDirSource(root, "", WithEmailParsing()).Documents(context.Background(), Spam)
	if err != nil || len(docs) != 1 {
		t.Fatalf("Documents = %d, %v", len(docs), err)
	}

	data, err := docs[0].Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "Free prize\nclaim now\r\n" {
		t.Errorf("Read = %q, expected headers stripped", data)
	}
}

func TestDirSourceMissingDir(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "missing"), "")

	if _, err := src.Documents(context.Background(), Spam); err == nil {
		t.Error("Expected error for missing directory")
	}

	docs, err := src.Documents(context.Background(), Ham)
	if err != nil || docs != nil {
		t.Errorf("Unset directory should yield no documents, got %v, %v", docs, err)
	}
}
