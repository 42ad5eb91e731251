package prompt

import "regexp"

// Vision tokens used by the multimodal chat template.
const (
	VisionStartToken  = "<|vision_start|>"
	VisionEndToken    = "<|vision_end|>"
	DefaultImageToken = "<|image_pad|>"
)

// Message is one chat-template message in role/content form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var roleForFrom = map[string]string{
	FromHuman: "user",
	FromGPT:   "assistant",
}

var imageTokenPattern = regexp.MustCompile(`\n?` + regexp.QuoteMeta(ImageToken) + `\n?`)

// ToMessages converts training turns into chat-template messages, mapping
// human->user and gpt->assistant and substituting the image placeholder with
// the vision token span.
func ToMessages(turns []Turn) []Message {
	out := make([]Message, 0, len(turns))
	for _, t := range turns {
		role, ok := roleForFrom[t.From]
		if !ok {
			role = t.From
		}
		content := imageTokenPattern.ReplaceAllString(t.Value, VisionStartToken+DefaultImageToken+VisionEndToken)
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}
