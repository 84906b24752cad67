// Package message defines the data types exchanged between parley's
// collaborators, the coordinator and the web API.
package message

import "github.com/nadzzz/parley/internal/language"

// AutoDetect is the source-language sentinel asking the translator to
// identify the language itself.
const AutoDetect = "auto"

// TranslationResult is the outcome of one translation request. It is built
// once by the translator service and never mutated afterwards.
type TranslationResult struct {
	// OriginalText is the text that was submitted.
	OriginalText string `json:"original_text"`

	// DetectedLanguage is the source language code the translator used or
	// reported. Empty when translation failed.
	DetectedLanguage string `json:"detected_language"`

	// DetectedLanguageName is the catalog name of DetectedLanguage.
	DetectedLanguageName string `json:"detected_language_name,omitempty"`

	// TranslatedText is the translation; empty on failure.
	TranslatedText string `json:"translated_text"`

	// TargetLanguage is the requested target code.
	TargetLanguage string `json:"target_language,omitempty"`

	// TargetLanguageName is the catalog name of TargetLanguage.
	TargetLanguageName string `json:"target_language_name,omitempty"`

	// Success reports whether TranslatedText is valid.
	Success bool `json:"success"`

	// Error describes the failure when Success is false.
	Error *string `json:"error"`
}

// ErrorMessage returns the failure text, or "" on success.
func (r TranslationResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// Failed builds a failed result for text.
func Failed(text, errMsg string) TranslationResult {
	return TranslationResult{
		OriginalText: text,
		Success:      false,
		Error:        &errMsg,
	}
}

// DetectRequest is the body of POST /api/detect.
type DetectRequest struct {
	Text string `json:"text"`
}

// DetectResponse is the reply of POST /api/detect.
type DetectResponse struct {
	Success  bool                `json:"success"`
	Language *language.Detection `json:"language,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	Text string `json:"text"`

	// TargetLang defaults to "en".
	TargetLang string `json:"target_lang"`

	// SourceLang is optional; null or empty means auto-detect.
	SourceLang *string `json:"source_lang"`
}

// SpeakRequest is the body of POST /api/speak.
type SpeakRequest struct {
	Text string `json:"text"`

	// Lang defaults to "en".
	Lang string `json:"lang"`
}

// StatusResponse is the reply of POST /api/speak and POST /api/stop-audio.
type StatusResponse struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}
