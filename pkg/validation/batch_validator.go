package validation

import (
	"fmt"
	"strings"

	apperrors "go-social-analyzer/internal/errors"
	"go-social-analyzer/pkg/models"
)

const (
	DefaultMinImages   = 5
	DefaultMaxImages   = 30
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// DefaultAllowedTypes lists the media types accepted for analysis.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// BatchValidator checks an uploaded image batch against count, size and type limits.
type BatchValidator struct {
	minImages    int
	maxImages    int
	maxFileSize  int64
	allowedTypes []string
}

// NewBatchValidator creates a batch validator with default limits
func NewBatchValidator() *BatchValidator {
	return NewBatchValidatorWithOptions(DefaultMinImages, DefaultMaxImages, DefaultMaxFileSize, DefaultAllowedTypes)
}

// NewBatchValidatorWithOptions creates a batch validator with custom limits
func NewBatchValidatorWithOptions(minImages, maxImages int, maxFileSize int64, allowedTypes []string) *BatchValidator {
	return &BatchValidator{
		minImages:    minImages,
		maxImages:    maxImages,
		maxFileSize:  maxFileSize,
		allowedTypes: allowedTypes,
	}
}

// Validate returns nil for an acceptable batch, or a validation AppError
// carrying the first violation found. Checks run in a fixed order: too few
// images, too many images, first oversized file, first unsupported type.
func (v *BatchValidator) Validate(images []models.UploadedImage) error {
	if len(images) < v.minImages {
		return apperrors.NewValidationError(fmt.Sprintf("请至少上传%d张图片", v.minImages), nil)
	}
	if len(images) > v.maxImages {
		return apperrors.NewValidationError(fmt.Sprintf("最多只能上传%d张图片", v.maxImages), nil)
	}
	for _, img := range images {
		if img.Size > v.maxFileSize {
			return apperrors.NewValidationError(
				fmt.Sprintf("文件 %s 超过%s", img.Filename, formatSize(v.maxFileSize)), nil)
		}
		if !v.isTypeAllowed(img.MediaType) {
			return apperrors.NewValidationError(
				fmt.Sprintf("文件 %s 格式不支持（仅%s）", img.Filename, v.typeList()), nil)
		}
	}
	return nil
}

// isTypeAllowed checks if the declared media type is in the allow-list
func (v *BatchValidator) isTypeAllowed(mediaType string) bool {
	for _, allowed := range v.allowedTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// typeList renders the allow-list as short extensions, e.g. "jpg/png/webp".
func (v *BatchValidator) typeList() string {
	names := make([]string, 0, len(v.allowedTypes))
	for _, t := range v.allowedTypes {
		name := strings.TrimPrefix(t, "image/")
		if name == "jpeg" {
			name = "jpg"
		}
		names = append(names, name)
	}
	return strings.Join(names, "/")
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n%1024 == 0 {
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%d字节", n)
}
