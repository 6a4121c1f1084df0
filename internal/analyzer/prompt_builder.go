package analyzer

import (
	"fmt"
	"strings"

	"go-social-analyzer/pkg/models"
)

// PromptBuilder assembles the multi-modal prompt for one analysis request.
type PromptBuilder struct {
	options PromptOptions
}

// NewPromptBuilder creates a prompt builder
func NewPromptBuilder(options PromptOptions) *PromptBuilder {
	if options.SystemInstruction == "" {
		options.SystemInstruction = DefaultSystemInstruction
	}
	if options.MaxImages <= 0 {
		options.MaxImages = DefaultPromptImageLimit
	}
	return &PromptBuilder{options: options}
}

// Build embeds at most MaxImages images, in arrival order, followed by one
// text block describing the whole batch. It never fails.
func (b *PromptBuilder) Build(req models.AnalysisRequest) models.Prompt {
	selected := req.Images
	if len(selected) > b.options.MaxImages {
		selected = selected[:b.options.MaxImages]
	}

	content := make([]models.ContentBlock, 0, len(selected)+1)
	for _, img := range selected {
		content = append(content, models.ImageBlock{MediaType: img.MediaType, Data: img.Data})
	}
	content = append(content, models.TextBlock{Text: describeBatch(req)})

	return models.Prompt{
		SystemInstruction: b.options.SystemInstruction,
		Content:           content,
	}
}

// describeBatch counts every uploaded image, not only the embedded ones.
func describeBatch(req models.AnalysisRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "我上传了%d张朋友圈截图。文件名是：%s。\n", len(req.Images), strings.Join(req.Filenames(), ", "))
	if req.Notes != "" {
		fmt.Fprintf(&sb, "我的额外备注：%s\n", req.Notes)
	}
	return sb.String()
}
