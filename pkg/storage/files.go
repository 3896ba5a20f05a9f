package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/metrics"
	"github.com/google/uuid"
)

type Purpose string

const (
	PurposeSubmission Purpose = "submission"
	PurposeAssignment Purpose = "assignment"
	PurposeMaterial   Purpose = "material"
	PurposeProfile    Purpose = "profile"
)

const FileTypeLink = "link"

var allowedExtensions = map[Purpose][]string{
	PurposeSubmission: {"pdf", "doc", "docx", "txt", "jpg", "jpeg", "png", "gif", "zip", "rar", "ppt", "pptx"},
	PurposeAssignment: {"pdf", "doc", "docx", "txt", "jpg", "jpeg", "png", "gif", "zip", "rar", "ppt", "pptx"},
	PurposeMaterial:   {"pdf", "doc", "docx", "txt", "ppt", "pptx", "jpg", "jpeg", "png", "gif", "mp4", "mov", "avi", "zip", "rar", "mp3", "wav"},
	PurposeProfile:    {"jpg", "jpeg", "png", "gif"},
}

var folders = map[Purpose]string{
	PurposeSubmission: "submissions",
	PurposeAssignment: "assignments",
	PurposeMaterial:   "materials",
	PurposeProfile:    "profiles",
}

var fileTypes = map[string]string{
	"pdf":  "pdf",
	"doc":  "word",
	"docx": "word",
	"ppt":  "powerpoint",
	"pptx": "powerpoint",
	"jpg":  "image",
	"jpeg": "image",
	"png":  "image",
	"gif":  "image",
	"mp4":  "video",
	"mov":  "video",
	"avi":  "video",
	"mp3":  "audio",
	"wav":  "audio",
	"zip":  "archive",
	"rar":  "archive",
	"txt":  "text",
}

var (
	unsafeNameChars  = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	unsafeTitleChars = regexp.MustCompile(`[^A-Za-z0-9 _-]`)
)

// Ext returns the lower-cased extension of name without the leading dot.
func Ext(name string) string {
	ext := path.Ext(strings.ReplaceAll(name, "\\", "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Allowed reports whether name carries an extension accepted for purpose.
func Allowed(purpose Purpose, name string) bool {
	ext := Ext(name)
	if ext == "" {
		return false
	}
	for _, allowed := range allowedExtensions[purpose] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// AllowedExtensions lists the extensions accepted for purpose.
func AllowedExtensions(purpose Purpose) []string {
	return append([]string(nil), allowedExtensions[purpose]...)
}

func Folder(purpose Purpose) string {
	return folders[purpose]
}

// SanitizeFileName strips directory components and any character outside
// [A-Za-z0-9._-] from name. The extension survives even when nothing is left
// of the stem, so ".pdf" becomes "file.pdf".
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeNameChars.ReplaceAllString(name, "")

	ext := path.Ext(name)
	if ext == "." {
		ext = ""
	}
	stem := strings.TrimLeft(strings.TrimSuffix(name, ext), "._")
	if stem == "" {
		stem = "file"
	}
	return stem + ext
}

// UniqueName prefixes the sanitized name with a random token.
func UniqueName(name string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token + "_" + SanitizeFileName(name)
}

// FileTypeFor classifies a file by extension for display purposes.
func FileTypeFor(name string) string {
	if t, ok := fileTypes[Ext(name)]; ok {
		return t
	}
	return "file"
}

// CleanTitle keeps alphanumerics, spaces, hyphens and underscores.
func CleanTitle(title string) string {
	return strings.TrimRight(unsafeTitleChars.ReplaceAllString(title, ""), " ")
}

// DownloadName builds a readable file name from base and the extension of
// the stored location.
func DownloadName(base, location string) string {
	name := CleanTitle(base)
	if name == "" {
		name = "download"
	}
	if ext := Ext(location); ext != "" {
		name += "." + ext
	}
	return name
}

// Store validates the file against purpose and saves it under a unique name.
func Store(ctx context.Context, fs FileStorage, purpose Purpose, r io.Reader, fileName string) (string, error) {
	if !Allowed(purpose, fileName) {
		metrics.UploadsRejectedTotal.WithLabelValues(string(purpose)).Inc()
		return "", fmt.Errorf("%w: allowed types are %s", apperror.ErrInvalidFileType,
			strings.Join(allowedExtensions[purpose], ", "))
	}

	location, err := fs.Save(ctx, r, Folder(purpose), UniqueName(fileName))
	if err != nil {
		return "", fmt.Errorf("failed to store %s file: %w", purpose, err)
	}
	return location, nil
}

// Download resolves location and pairs it with the name the client saves it as.
func Download(fs FileStorage, location, fileName string) (*dto.FileDownload, error) {
	resolved, err := fs.Locate(location)
	if err != nil {
		return nil, err
	}
	return &dto.FileDownload{
		Location: resolved,
		FileName: fileName,
		Remote:   IsRemote(resolved),
	}, nil
}
