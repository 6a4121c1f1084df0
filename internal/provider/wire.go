package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go-social-analyzer/pkg/models"
)

// NoContentReason is reported when a 2xx body carries no model text.
const NoContentReason = "Invalid API response structure: No content found"

const errorSnippetLength = 200

type contentItem struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type inputMessage struct {
	Role    string        `json:"role"`
	Content []contentItem `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
}

// responsesResponse covers both the Responses API shape and the legacy
// chat-completions shape.
type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newResponsesRequest(model string, prompt models.Prompt) responsesRequest {
	user := make([]contentItem, 0, len(prompt.Content))
	for _, block := range prompt.Content {
		switch b := block.(type) {
		case models.ImageBlock:
			user = append(user, contentItem{Type: "input_image", ImageURL: b.DataURL()})
		case models.TextBlock:
			user = append(user, contentItem{Type: "input_text", Text: b.Text})
		}
	}

	return responsesRequest{
		Model: model,
		Input: []inputMessage{
			{Role: "system", Content: []contentItem{{Type: "input_text", Text: prompt.SystemInstruction}}},
			{Role: "user", Content: user},
		},
	}
}

// interpretResponse classifies a completed HTTP exchange.
func interpretResponse(status int, raw []byte) models.ProviderOutcome {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return models.Failure(describeErrorBody(status, raw))
	}

	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.Failure(fmt.Sprintf("Invalid API response body: %v", err))
	}

	if text := extractText(resp); text != "" {
		return models.Success(text)
	}
	return models.Failure(NoContentReason)
}

// extractText prefers the first "message" output item, then choices[0].
func extractText(resp responsesResponse) string {
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		if len(item.Content) > 0 && item.Content[0].Text != "" {
			return item.Content[0].Text
		}
		break
	}
	if len(resp.Choices) > 0 {
		if text, ok := resp.Choices[0].Message.Content.(string); ok {
			return text
		}
	}
	return ""
}

func describeErrorBody(status int, raw []byte) string {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != nil && body.Error.Message != "" {
		if code := codeString(body.Error.Code); code != "" {
			return code + ": " + body.Error.Message
		}
		return body.Error.Message
	}
	return fmt.Sprintf("API Error %d: %s", status, truncateRunes(string(raw), errorSnippetLength))
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
