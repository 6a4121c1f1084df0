package analyzer

// DefaultSystemInstruction sets the analyst persona and demands strict JSON output.
const DefaultSystemInstruction = "你是一位精通心理学和社交关系的朋友圈分析师。请根据用户提供的朋友圈内容（图片、用户备注等），分析其性格特质、潜在需求，并给出高情商的聊天建议和行动指南。输出必须是严格的JSON格式，包含 personality (string), chat_suggestions (array of strings), action_guide (array of strings)。"

// DefaultPromptImageLimit caps the images embedded in one prompt.
const DefaultPromptImageLimit = 5

// PromptOptions configures prompt assembly
type PromptOptions struct {
	SystemInstruction string
	MaxImages         int
}

// DefaultPromptOptions returns the default prompt options
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		SystemInstruction: DefaultSystemInstruction,
		MaxImages:         DefaultPromptImageLimit,
	}
}

// WithMaxImages returns options with a different image cap
func (opts PromptOptions) WithMaxImages(n int) PromptOptions {
	if n > 0 {
		opts.MaxImages = n
	}
	return opts
}
