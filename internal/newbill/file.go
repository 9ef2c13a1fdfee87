package newbill

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// AllowedExtensions lists the accepted receipt extensions, without the dot.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

// ErrRejectedFileType matches every RejectedFileTypeError.
var ErrRejectedFileType = errors.New("rejected file type")

// RejectedFileTypeError reports a receipt whose extension is not allowed.
type RejectedFileTypeError struct {
	Name      string
	Extension string
}

func (e *RejectedFileTypeError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("file %q has no extension: only jpg, jpeg and png are accepted", e.Name)
	}
	return fmt.Sprintf("file extension %q is not accepted: only jpg, jpeg and png are accepted", e.Extension)
}

func (e *RejectedFileTypeError) Is(target error) bool {
	return target == ErrRejectedFileType
}

// ValidateFile checks the extension of name against AllowedExtensions,
// ignoring case. Only the name is inspected.
func ValidateFile(name string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
	if !slices.Contains(AllowedExtensions, ext) {
		return &RejectedFileTypeError{Name: name, Extension: ext}
	}
	return nil
}

// ContentTypeFor returns the MIME type of an accepted receipt name.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// File is a receipt chosen in the form.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileState is the state of the form's file field.
type FileState int

// File field states.
const (
	FileEmpty FileState = iota
	FileValid
	FileInvalid
)

func (s FileState) String() string {
	switch s {
	case FileEmpty:
		return "empty"
	case FileValid:
		return "valid"
	case FileInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("FileState(%d)", int(s))
	}
}
