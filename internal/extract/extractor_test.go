package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// minimalPDF returns a valid PDF with one page per text, each page drawing its
// text with a standard Type1 font.
func minimalPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// minimalPptx returns minimal .pptx zip bytes with one slide per text, written
// in the given order under the given slide numbers.
func minimalPptx(slides map[int]string, order []int) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, n := range order {
		fw, _ := w.Create(fmt.Sprintf("ppt/slides/slide%d.xml", n))
		_, _ = fw.Write([]byte(`<p:sld xmlns:p="a" xmlns:a="b"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + slides[n] + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`))
	}
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractPagesBytes_pdf(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractPagesBytes(minimalPDF("First page text.", "Second page text."), ".pdf")
	if err != nil {
		t.Fatalf("ExtractPagesBytes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d pages, want 2", len(got))
	}
	if !strings.Contains(got[0], "First page text.") {
		t.Errorf("page 1 = %q", got[0])
	}
	if !strings.Contains(got[1], "Second page text.") {
		t.Errorf("page 2 = %q", got[1])
	}
}

func TestExtractPagesBytes_pdfCorrupt(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractPagesBytes([]byte("this is not a pdf at all"), ".pdf"); err == nil {
		t.Error("expected error for corrupt PDF")
	}
}

func TestExtractPagesBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractPagesBytes([]byte("Hello world\nLine 2"), ".txt")
	if err != nil {
		t.Fatalf("ExtractPagesBytes: %v", err)
	}
	if len(got) != 1 || got[0] != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractPagesBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractPagesBytes([]byte("hello\x80world"), ".md")
	if err != nil {
		t.Fatalf("ExtractPagesBytes: %v", err)
	}
	if got[0] != "hello\uFFFDworld" {
		t.Errorf("got %q", got[0])
	}
}

func TestExtractPagesBytes_excelSheetPerPage(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	if _, err := f.NewSheet("Results"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetCellValue("Results", "A1", "Accuracy")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	e := NewExtractor()
	got, err := e.ExtractPagesBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractPagesBytes: %v", err)
	}
	want := []string{"Title\nValue 1\tValue 2", "Accuracy"}
	if len(got) != len(want) {
		t.Fatalf("got %d pages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestExtractPagesBytes_pptxSlideOrder(t *testing.T) {
	slides := map[int]string{1: "First slide", 2: "Second slide", 10: "Tenth slide"}
	content := minimalPptx(slides, []int{10, 2, 1})

	e := NewExtractor()
	got, err := e.ExtractPagesBytes(content, ".pptx")
	if err != nil {
		t.Fatalf("ExtractPagesBytes: %v", err)
	}
	want := []string{"First slide", "Second slide", "Tenth slide"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractPagesBytes_pptxNotZip(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractPagesBytes([]byte("not a zip"), ".pptx"); err == nil {
		t.Error("expected error for non-zip pptx")
	}
}

func TestExtractPagesBytes_unsupported(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractPagesBytes([]byte("x"), ".docx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestExtractPages_nonexistent(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractPages(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtractPages_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.TXT")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(got) != 1 || got[0] != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"paper.pdf":   true,
		"PAPER.PDF":   true,
		"data.xlsx":   true,
		"talk.pptx":   true,
		"readme.md":   true,
		"notes.txt":   true,
		"report.docx": false,
		"noext":       false,
	}
	for name, want := range tests {
		if got := IsSupported(name); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", name, got, want)
		}
	}
}
