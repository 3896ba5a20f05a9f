package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"anoa.com/educonnect/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		purpose Purpose
		name    string
		want    bool
	}{
		{PurposeSubmission, "essay.PDF", true},
		{PurposeSubmission, "essay.docx", true},
		{PurposeSubmission, "lecture.mp4", false},
		{PurposeSubmission, "noext", false},
		{PurposeSubmission, "script.pdf.exe", false},
		{PurposeMaterial, "lecture.MP4", true},
		{PurposeMaterial, "song.wav", true},
		{PurposeMaterial, "run.sh", false},
		{PurposeProfile, "me.png", true},
		{PurposeProfile, "me.pdf", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.purpose)+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.purpose, tt.name))
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"my report (final).pdf", "my_report_final.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\windows\win.ini`, "win.ini"},
		{".hidden", "file.hidden"},
		{".pdf", "file.pdf"},
		{"..pdf", "file.pdf"},
		{"_notes.txt", "notes.txt"},
		{"???", "file"},
		{"...", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestUniqueName(t *testing.T) {
	a := UniqueName("../essay final.pdf")
	b := UniqueName("../essay final.pdf")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_essay_final.pdf"))
	assert.NotContains(t, a, "/")
	assert.Len(t, strings.SplitN(a, "_", 2)[0], 32)

	assert.True(t, strings.HasSuffix(UniqueName(".pdf"), "_file.pdf"))
	assert.Equal(t, "pdf", Ext(UniqueName(".pdf")))
}

func TestFileTypeFor(t *testing.T) {
	assert.Equal(t, "pdf", FileTypeFor("a.pdf"))
	assert.Equal(t, "word", FileTypeFor("a.DOCX"))
	assert.Equal(t, "powerpoint", FileTypeFor("a.ppt"))
	assert.Equal(t, "image", FileTypeFor("a.jpeg"))
	assert.Equal(t, "video", FileTypeFor("a.mov"))
	assert.Equal(t, "audio", FileTypeFor("a.mp3"))
	assert.Equal(t, "archive", FileTypeFor("a.rar"))
	assert.Equal(t, "text", FileTypeFor("a.txt"))
	assert.Equal(t, "file", FileTypeFor("a.xyz"))
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "Alice Smith_Essay 1.pdf", DownloadName("Alice Smith_Essay #1!", "submissions/abc_x.PDF"))
	assert.Equal(t, "Week 3 slides.pptx", DownloadName("Week 3: slides  ", "materials/abc_deck.pptx"))
	assert.Equal(t, "download", DownloadName("???", "materials/noext"))
}

func TestStore(t *testing.T) {
	fs, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("rejects disallowed extension", func(t *testing.T) {
		_, err := Store(ctx, fs, PurposeSubmission, strings.NewReader("x"), "virus.exe")
		assert.True(t, errors.Is(err, apperror.ErrInvalidFileType))
	})

	t.Run("saves under purpose folder", func(t *testing.T) {
		loc, err := Store(ctx, fs, PurposeMaterial, strings.NewReader("slides"), "Deck.PPTX")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(loc, "materials/"))

		p, err := fs.Locate(loc)
		require.NoError(t, err)
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "slides", string(data))
	})
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	loc, err := fs.Save(ctx, bytes.NewBufferString("hello"), "submissions", "abc_hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "submissions/abc_hello.txt", loc)

	p, err := fs.Locate(loc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "submissions", "abc_hello.txt"), p)

	require.NoError(t, fs.Delete(ctx, loc))
	_, err = fs.Locate(loc)
	assert.ErrorIs(t, err, apperror.ErrFileNotFound)

	_, err = fs.Locate("../outside.txt")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	remote, err := fs.Locate("https://example.com/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.pdf", remote)
}

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url      string
		wantType string
		wantID   string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v123456789/edu/profiles/abc_me.jpg", "image", "edu/profiles/abc_me"},
		{"https://res.cloudinary.com/demo/raw/upload/v1/edu/submissions/abc_essay.pdf", "raw", "edu/submissions/abc_essay.pdf"},
		{"https://res.cloudinary.com/demo/video/upload/edu/materials/abc_talk.mp4", "video", "edu/materials/abc_talk"},
		{"https://example.com/no-upload-segment.png", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			gotType, gotID := extractPublicID(tt.url)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestDownload(t *testing.T) {
	fs, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = Download(fs, "materials/missing.pdf", "Week 1.pdf")
	assert.ErrorIs(t, err, apperror.ErrFileNotFound)

	file, err := Download(fs, "https://res.cloudinary.com/demo/raw/upload/v1/materials/a.pdf", "a.pdf")
	require.NoError(t, err)
	assert.True(t, file.Remote)
	assert.Equal(t, "a.pdf", file.FileName)
}
