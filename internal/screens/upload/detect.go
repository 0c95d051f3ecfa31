package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mindsync-ai/mindsync/internal/api"
)

var errUnsupportedType = errors.New("unsupported file type")

// cleanPath normalizes a typed or pasted path. Terminals paste dropped
// files quoted, escaped or as file:// URLs.
func cleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
	}
	if strings.HasPrefix(p, "file://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
		}
	}
	p = strings.ReplaceAll(p, `\ `, " ")
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

// detectType returns the MIME type of the file at path when it is one of
// the accepted document types. The extension picks the candidate type and
// the leading bytes must agree with it.
func detectType(path string) (string, error) {
	var want string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		want = api.MIMEPDF
	case ".txt", ".text", ".md":
		want = api.MIMEPlain
	default:
		return "", errUnsupportedType
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", filepath.Base(path))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if n == 0 && want == api.MIMEPlain {
		return want, nil
	}

	sniffed := http.DetectContentType(head[:n])
	if !strings.HasPrefix(sniffed, want) {
		return "", errUnsupportedType
	}
	return want, nil
}

// describeError turns a local or service error into the inline message.
func describeError(err error) string {
	switch {
	case errors.Is(err, errUnsupportedType):
		return "Unsupported file type. Use a PDF or TXT file."
	case errors.Is(err, os.ErrNotExist):
		return "File not found."
	case errors.Is(err, os.ErrPermission):
		return "The file could not be read (permission denied)."
	}
	var pe *os.PathError
	if errors.As(err, &pe) {
		return "The file could not be read."
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		return api.UserMessage(err)
	}
	if strings.Contains(err.Error(), "is a directory") {
		return "Choose a file, not a directory."
	}
	return api.UserMessage(err)
}
