package validation

import (
	"fmt"
	"testing"

	apperrors "go-social-analyzer/internal/errors"
	"go-social-analyzer/pkg/models"
)

func batch(n int, mediaType string) []models.UploadedImage {
	images := make([]models.UploadedImage, n)
	for i := range images {
		images[i] = models.UploadedImage{
			Filename:  fmt.Sprintf("shot-%d.jpg", i+1),
			MediaType: mediaType,
			Size:      1024,
			Data:      []byte("x"),
		}
	}
	return images
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got: %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("Expected validation type, got %s", appErr.Type)
	}
	return appErr.Message
}

func TestValidate_CountBounds(t *testing.T) {
	validator := NewBatchValidator()

	tests := []struct {
		name  string
		count int
		want  string
	}{
		{"empty batch", 0, "请至少上传5张图片"},
		{"four images", 4, "请至少上传5张图片"},
		{"thirty-one images", 31, "最多只能上传30张图片"},
		{"fifty images", 50, "最多只能上传30张图片"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reasonOf(t, validator.Validate(batch(tt.count, "image/jpeg")))
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidate_AcceptsBoundaries(t *testing.T) {
	validator := NewBatchValidator()
	for _, n := range []int{5, 6, 30} {
		if err := validator.Validate(batch(n, "image/jpeg")); err != nil {
			t.Errorf("Expected %d images to pass, got %v", n, err)
		}
	}
	images := batch(5, "image/png")
	images[0].MediaType = "image/webp"
	images[1].Size = DefaultMaxFileSize
	if err := validator.Validate(images); err != nil {
		t.Errorf("Expected mixed png/webp batch at exact size limit to pass, got %v", err)
	}
}

func TestValidate_CountCheckedBeforeFiles(t *testing.T) {
	images := batch(3, "image/gif")
	images[0].Size = DefaultMaxFileSize + 1

	got := reasonOf(t, NewBatchValidator().Validate(images))
	if got != "请至少上传5张图片" {
		t.Errorf("Expected count reason to win, got %q", got)
	}
}

func TestValidate_FirstViolationWins(t *testing.T) {
	images := batch(6, "image/jpeg")
	images[1].MediaType = "image/gif"
	images[3].Size = DefaultMaxFileSize + 1

	got := reasonOf(t, NewBatchValidator().Validate(images))
	if got != "文件 shot-2.jpg 格式不支持（仅jpg/png/webp）" {
		t.Errorf("Expected first offending file in order, got %q", got)
	}
}

func TestValidate_OversizedFile(t *testing.T) {
	images := batch(5, "image/jpeg")
	images[2].Size = DefaultMaxFileSize + 1

	got := reasonOf(t, NewBatchValidator().Validate(images))
	if got != "文件 shot-3.jpg 超过10MB" {
		t.Errorf("Unexpected reason %q", got)
	}
}

func TestValidate_SizeCheckedBeforeTypeForSameFile(t *testing.T) {
	images := batch(5, "image/jpeg")
	images[0].MediaType = "application/pdf"
	images[0].Size = DefaultMaxFileSize + 1

	got := reasonOf(t, NewBatchValidator().Validate(images))
	if got != "文件 shot-1.jpg 超过10MB" {
		t.Errorf("Expected size reason for the first file, got %q", got)
	}
}

func TestNewBatchValidatorWithOptions(t *testing.T) {
	validator := NewBatchValidatorWithOptions(1, 2, 512*1024, []string{"image/png"})

	if err := validator.Validate(batch(2, "image/png")); err != nil {
		t.Errorf("Expected custom limits to accept batch, got %v", err)
	}
	if got := reasonOf(t, validator.Validate(batch(3, "image/png"))); got != "最多只能上传2张图片" {
		t.Errorf("Unexpected reason %q", got)
	}
	if got := reasonOf(t, validator.Validate(batch(1, "image/jpeg"))); got != "文件 shot-1.jpg 格式不支持（仅png）" {
		t.Errorf("Unexpected reason %q", got)
	}

	big := batch(1, "image/png")
	big[0].Size = 512*1024 + 1
	if got := reasonOf(t, validator.Validate(big)); got != "文件 shot-1.jpg 超过512KB" {
		t.Errorf("Unexpected reason %q", got)
	}
}
