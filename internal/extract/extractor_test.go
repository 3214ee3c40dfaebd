package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	content := []byte("Hello world\nLine 2")
	got, err := e.ExtractBytes(content, ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	content := []byte("caf\xc3\xa9") // valid UTF-8
	got, err := e.ExtractBytes(content, ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	content := []byte("hello\x80world") // invalid UTF-8
	got, err := e.ExtractBytes(content, ".rst")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract("/nonexistent/path/file.txt")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtractBytes_unknownExtension(t *testing.T) {
	e := NewExtractor()
	content := []byte("raw content")
	got, err := e.ExtractBytes(content, ".xyz")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	// Unknown extension falls back to plain
	if got != "raw content" {
		t.Errorf("got %q", got)
	}
}

// minimalDocx returns a minimal .docx zip bytes with word/document.xml containing the given text in <w:t> tags.
func minimalDocx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

// minimalDocxWithContentTypes returns a .docx zip with [Content_Types].xml pointing to a custom document path.
func minimalDocxWithContentTypes(text, docPath string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	// Create [Content_Types].xml pointing to custom document path
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/` + docPath + `" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	// Create the document at the custom path
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	content := minimalDocx("Searchable docx content")
	got, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Searchable docx content" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxWithDocument2(t *testing.T) {
	e := NewExtractor()
	// Simulate a DOCX with word/document2.xml instead of word/document.xml
	content := minimalDocxWithContentTypes("Content from document2", "word/document2.xml")
	got, err := e.ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Content from document2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypesReversedOrder(t *testing.T) {
	e := NewExtractor()
	// Test with ContentType attribute before PartName
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document3.xml"/>
</Types>`))
	fw, _ := w.Create("word/document3.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Reversed order test</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	got, err := e.ExtractBytes(buf.Bytes(), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Reversed order test" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxNotZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	if _, err := e.Extract(path); err == nil {
		t.Error("expected error for corrupt docx")
	}
}
