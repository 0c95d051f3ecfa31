// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"rsc.io/pdf"

	"github.com/mindsync-ai/mindsync/internal/api"
)

var (
	// ErrUnsupportedType is returned for anything other than PDF or plain text.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrNoText is returned when a document yields no readable text.
	ErrNoText = errors.New("document contains no extractable text")
)

// sniffLen is how many leading bytes Detect needs.
const sniffLen = 512

// Detect resolves the content type of a document from its file name and
// leading bytes. The declared type, when set, must agree with the result.
func Detect(name, declared string, head []byte) (string, error) {
	var byExt string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		byExt = api.MIMEPDF
	case ".txt", ".text", ".md":
		byExt = api.MIMEPlain
	}

	sniffed := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(sniffed, api.MIMEPDF):
		sniffed = api.MIMEPDF
	case strings.HasPrefix(sniffed, api.MIMEPlain):
		sniffed = api.MIMEPlain
	case len(head) == 0:
		sniffed = byExt
	default:
		return "", fmt.Errorf("%s (%s): %w", name, sniffed, ErrUnsupportedType)
	}

	if byExt != "" && byExt != sniffed {
		return "", fmt.Errorf("%s looks like %s: %w", name, sniffed, ErrUnsupportedType)
	}
	if byExt == "" {
		byExt = sniffed
	}

	if declared != "" && declared != "application/octet-stream" {
		base, _, _ := strings.Cut(declared, ";")
		if strings.TrimSpace(base) != byExt {
			return "", fmt.Errorf("%s declared as %s: %w", name, declared, ErrUnsupportedType)
		}
	}
	return byExt, nil
}

// Text extracts the text of a document of the given content type.
func Text(contentType string, r io.ReaderAt, size int64) (string, error) {
	switch contentType {
	case api.MIMEPlain:
		return plainText(r, size)
	case api.MIMEPDF:
		return pdfText(r, size)
	}
	return "", fmt.Errorf("%s: %w", contentType, ErrUnsupportedType)
}

// Bytes is Text over an in-memory document.
func Bytes(contentType string, data []byte) (string, error) {
	return Text(contentType, bytes.NewReader(data), int64(len(data)))
}

func plainText(r io.ReaderAt, size int64) (string, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text, nil
}

func pdfText(r io.ReaderAt, size int64) (text string, err error) {
	// The PDF reader panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("read pdf: malformed document: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		if t := joinText(p.Content().Text); t != "" {
			pages = append(pages, t)
		}
	}

	out := strings.Join(pages, "\n\n")
	if strings.TrimSpace(out) == "" {
		return "", ErrNoText
	}
	return out, nil
}

// joinText lays out positioned glyph runs as lines. Runs on the same
// baseline are joined left to right, with a space where the horizontal gap
// is wider than a fraction of the font size.
func joinText(runs []pdf.Text) string {
	if len(runs) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !sameLine(a, b) {
			return a.Y > b.Y // PDF origin is bottom-left
		}
		return a.X < b.X
	})

	var b strings.Builder
	prev := sorted[0]
	b.WriteString(prev.S)
	for _, t := range sorted[1:] {
		switch {
		case !sameLine(prev, t):
			b.WriteByte('\n')
		case t.X-(prev.X+prev.W) > 0.2*math.Max(t.FontSize, 1):
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prev = t
	}
	return strings.TrimSpace(b.String())
}

func sameLine(a, b pdf.Text) bool {
	return math.Abs(a.Y-b.Y) < 0.5*math.Max(math.Max(a.FontSize, b.FontSize), 1)
}
