package transport

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go-social-analyzer/internal/config"
	apperrors "go-social-analyzer/internal/errors"
	"go-social-analyzer/internal/logger"
	"go-social-analyzer/internal/observer"
	"go-social-analyzer/internal/service"
	"go-social-analyzer/pkg/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	imagesField = "images"
	// maxConcurrentReads bounds how many uploaded parts are read at once.
	maxConcurrentReads = 4
	version            = "1.0.0"
)

// analyzeForm carries the non-file fields of the upload.
type analyzeForm struct {
	Notes string `form:"notes" binding:"max=10000"`
}

// NewHandler builds the HTTP routes. metrics may be nil, in which case
// /health reports no analysis counters.
func NewHandler(svc service.AnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxMultipartMemory

	r.Use(
		requestID(),
		requestLogger(),
		recovery(),
		corsMiddleware(cfg.CORSAllowOrigins),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/health", healthCheck(metrics))
	r.POST("/api/analyze", analyzeImages(svc, cfg))

	return r
}

func analyzeImages(svc service.AnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		images, err := readImages(c)
		if err != nil {
			respondError(c, err)
			return
		}

		var form analyzeForm
		if err := c.ShouldBindWith(&form, binding.Form); err != nil && !isMissingMultipart(err) {
			var invalid validator.ValidationErrors
			if errors.As(err, &invalid) {
				respondError(c, apperrors.NewValidationError("备注内容过长", err))
			} else {
				respondError(c, apperrors.NewInternalError("failed to bind form", err))
			}
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id": logger.RequestIDFromContext(ctx),
			"images":     len(images),
			"has_notes":  form.Notes != "",
		}).Info("Processing social analysis request")

		envelope, err := svc.Analyze(ctx, models.AnalysisRequest{Images: images, Notes: form.Notes})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, envelope)
	}
}

// readImages loads every "images" part in arrival order. A request that is
// not multipart at all yields an empty batch so validation can reject it.
func readImages(c *gin.Context) ([]models.UploadedImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case isMissingMultipart(err):
			return nil, nil
		case errors.As(err, &maxBytes):
			return nil, apperrors.NewValidationError("上传内容过大", err)
		default:
			return nil, apperrors.NewInternalError("failed to parse multipart form", err)
		}
	}

	headers := form.File[imagesField]
	images := make([]models.UploadedImage, len(headers))

	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)
	for i, fh := range headers {
		i, fh := i, fh
		g.Go(func() error {
			img, err := readPart(fh)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("failed to read uploaded image", err)
	}
	return images, nil
}

func readPart(fh *multipart.FileHeader) (models.UploadedImage, error) {
	f, err := fh.Open()
	if err != nil {
		return models.UploadedImage{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.UploadedImage{}, err
	}

	return models.UploadedImage{
		Filename:  fh.Filename,
		MediaType: declaredMediaType(fh.Header.Get("Content-Type"), data),
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

// declaredMediaType trusts the part header unless it is absent or generic.
func declaredMediaType(header string, data []byte) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	if mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	detected := mimetype.Detect(data).String()
	return strings.TrimSpace(strings.Split(detected, ";")[0])
}

func isMissingMultipart(err error) bool {
	return errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary)
}

func healthCheck(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "available",
			"version": version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		}
		if metrics != nil {
			body["analyses"] = metrics.GetMetrics()
		}
		c.JSON(http.StatusOK, body)
	}
}

// respondError writes the public error body. Validation reasons are shown to
// the client; everything else is logged and replaced with a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	public := apperrors.InternalErrorMessage
	if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		status = apperrors.GetStatusCode(err)
		if appErr, ok := apperrors.As(err); ok {
			public = appErr.PublicMessage()
		}
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  logger.RequestIDFromContext(c.Request.Context()),
		"status_code": status,
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	})
	if status < http.StatusInternalServerError {
		entry.Info("Request rejected")
	} else {
		entry.Error("Request failed")
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: public})
}
