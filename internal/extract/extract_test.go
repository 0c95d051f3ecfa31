package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rsc.io/pdf"

	"github.com/mindsync-ai/mindsync/internal/api"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		declared string
		head     []byte
		want     string
		wantErr  bool
	}{
		{"plain text", "notes.txt", api.MIMEPlain, []byte("The ephemeral glow."), api.MIMEPlain, false},
		{"pdf", "paper.pdf", api.MIMEPDF, []byte("%PDF-1.4\n%..."), api.MIMEPDF, false},
		{"no extension", "README", "", []byte("hello there"), api.MIMEPlain, false},
		{"octet stream declared", "notes.txt", "application/octet-stream", []byte("hello"), api.MIMEPlain, false},
		{"declared with charset", "notes.txt", "text/plain; charset=utf-8", []byte("hello"), api.MIMEPlain, false},
		{"image", "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n0000"), "", true},
		{"pdf named txt", "notes.txt", "", []byte("%PDF-1.4\n"), "", true},
		{"declared mismatch", "notes.txt", api.MIMEPDF, []byte("hello"), "", true},
		{"empty txt", "empty.txt", "", nil, api.MIMEPlain, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.file, tt.declared, tt.head)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBytes_PlainText(t *testing.T) {
	got, err := Bytes(api.MIMEPlain, []byte("\xef\xbb\xbfLine one\r\nLine two"))
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", got)
}

func TestBytes_InvalidUTF8IsRepaired(t *testing.T) {
	got, err := Bytes(api.MIMEPlain, []byte("caf\xe9"))
	require.NoError(t, err)
	assert.Equal(t, "caf�", got)
}

func TestBytes_Unsupported(t *testing.T) {
	_, err := Bytes("image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestBytes_MalformedPDF(t *testing.T) {
	_, err := Bytes(api.MIMEPDF, []byte("%PDF-1.4\nthis is not really a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pdf")
}

func TestJoinText(t *testing.T) {
	runs := []pdf.Text{
		{S: "second", X: 10, Y: 680, W: 30, FontSize: 12},
		{S: "Hello", X: 10, Y: 700, W: 25, FontSize: 12},
		{S: "world", X: 40, Y: 700.2, W: 25, FontSize: 12},
		{S: "!", X: 65, Y: 700, W: 3, FontSize: 12},
	}
	assert.Equal(t, "Hello world!\nsecond", joinText(runs))
	assert.Empty(t, joinText(nil))
}
