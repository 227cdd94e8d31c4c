package types

import (
	"encoding/base64"
	"time"
)

// AttachmentPart: бинарное вложение запроса (картинка или аудио).
type AttachmentPart struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the payload in standard base64 encoding.
func (a AttachmentPart) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// AudioSource describes where audio comes from: either Path, or inline
// base64 Data with its MIMEType.
type AudioSource struct {
	Path     string `json:"path,omitempty"`
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// AnalysisResult is the raw-text answer of the image/audio analysis calls.
type AnalysisResult struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
