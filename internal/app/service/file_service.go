package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

const megabyte = 1024 * 1024

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type")
)

// FileError is a rejected upload; the message is shown to the user as is
type FileError struct {
	Kind    error
	Message string
}

func (e *FileError) Error() string { return e.Message }
func (e *FileError) Unwrap() error { return e.Kind }

type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type UploadedFile struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type FileOptions struct {
	MaxSize      int64
	AllowedTypes []string
}

// DefaultFileOptions accepts documents up to 10MB
func DefaultFileOptions() FileOptions {
	return FileOptions{
		MaxSize:      10 * megabyte,
		AllowedTypes: []string{"application/pdf", "image/png", "image/jpeg", "image/jpg"},
	}
}

// LogoOptions accepts company logos up to 2MB
func LogoOptions() FileOptions {
	return FileOptions{
		MaxSize:      2 * megabyte,
		AllowedTypes: []string{"image/png", "image/jpeg", "image/jpg"},
	}
}

type FileService interface {
	ValidateFile(file FileInfo, opts FileOptions) error
	Upload(ctx context.Context, file FileInfo) (*UploadedFile, error)
	DetectContentType(declared string, head []byte) string
}

type fileService struct {
	clock   util.Clock
	latency Latency
}

func NewFileService(clock util.Clock, latency Latency) FileService {
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &fileService{clock: clock, latency: latency}
}

// ValidateFile checks size first, then type. Zero-valued options fall back to the defaults.
func (s *fileService) ValidateFile(file FileInfo, opts FileOptions) error {
	defaults := DefaultFileOptions()
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaults.MaxSize
	}
	if len(opts.AllowedTypes) == 0 {
		opts.AllowedTypes = defaults.AllowedTypes
	}

	if file.Size > opts.MaxSize {
		mb := strconv.FormatFloat(float64(opts.MaxSize)/megabyte, 'f', -1, 64)
		return &FileError{
			Kind:    ErrFileTooLarge,
			Message: fmt.Sprintf("File size must be less than %sMB", mb),
		}
	}

	for _, allowed := range opts.AllowedTypes {
		if file.Type == allowed {
			return nil
		}
	}
	return &FileError{
		Kind:    ErrInvalidFileType,
		Message: "File type must be one of: " + strings.Join(opts.AllowedTypes, ", "),
	}
}

// Upload pretends to store the file and hands back a fabricated URL
func (s *fileService) Upload(ctx context.Context, file FileInfo) (*UploadedFile, error) {
	if err := wait(ctx, s.latency.Upload); err != nil {
		return nil, err
	}

	uploaded := &UploadedFile{
		URL:  fmt.Sprintf("mock-url-%d-%s", s.clock.Now().UnixMilli(), file.Name),
		Name: file.Name,
		Size: file.Size,
		Type: file.Type,
	}

	logger.Info("File upload simulated", map[string]interface{}{
		"name": file.Name,
		"size": file.Size,
		"type": file.Type,
	})
	return uploaded, nil
}

// DetectContentType trusts a specific declared type and sniffs the bytes otherwise
func (s *fileService) DetectContentType(declared string, head []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	detected := mimetype.Detect(head).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return detected
}
