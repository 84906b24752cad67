package translator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nadzzz/parley/internal/message"
)

// SystemPrompt builds the instruction given to LLM translation backends.
// Languages are passed as codes; the model answers with a JSON object that
// ParseReply understands.
func SystemPrompt(source, target string) string {
	var sb strings.Builder
	sb.WriteString("You are a professional translator.\n")
	if source == "" || source == message.AutoDetect {
		sb.WriteString("Identify the language of the user's text, then translate it")
	} else {
		sb.WriteString("The user's text is in the language with ISO-639-1 code \"" + source + "\". Translate it")
	}
	sb.WriteString(" into the language with code \"" + target + "\".\n")
	sb.WriteString("Translate faithfully. Keep formatting, line breaks and punctuation. Do not add explanations.\n")
	sb.WriteString("\nReturn a JSON object with:\n")
	sb.WriteString("- \"translation\": the translated text\n")
	sb.WriteString("- \"detected_language\": the ISO-639-1 code of the source text\n")
	sb.WriteString("\nExample: {\"translation\": \"Hello world\", \"detected_language\": \"fr\"}\n")
	return sb.String()
}

// ParseReply extracts a Translation from an LLM's JSON reply. Code fences
// around the object are tolerated.
func ParseReply(content string) (*Translation, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var reply struct {
		Translation      *string `json:"translation"`
		DetectedLanguage string  `json:"detected_language"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil || reply.Translation == nil {
		return nil, fmt.Errorf("could not parse translation reply: %.200s", content)
	}
	return &Translation{
		Text:           *reply.Translation,
		DetectedSource: strings.ToLower(strings.TrimSpace(reply.DetectedLanguage)),
	}, nil
}
