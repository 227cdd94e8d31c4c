package util

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

const (
	DefaultImageMIME = "image/png"
	DefaultAudioMIME = "audio/mp3"
)

var imageMIMEByExt = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

var audioMIMEByExt = map[string]string{
	"mp3":  "audio/mp3",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",
}

// ImageMIMEFromPath maps a file extension to an image MIME type.
// Unknown extensions fall back to image/png.
func ImageMIMEFromPath(path string) string {
	if m, ok := imageMIMEByExt[extOf(path)]; ok {
		return m
	}
	return DefaultImageMIME
}

// AudioMIMEFromPath maps a file extension to an audio MIME type.
// Unknown extensions fall back to audio/mp3.
func AudioMIMEFromPath(path string) string {
	if m, ok := audioMIMEByExt[extOf(path)]; ok {
		return m
	}
	return DefaultAudioMIME
}

func extOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(path)), "."))
}

// DecodeBase64MaybeDataURL декодирует base64. Если это data:URI, вернёт MIME из префикса.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	// Стандартная база64, затем URL-safe: на случай вариаций
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	} else if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, hintMIME, nil
	} else {
		return nil, "", err
	}
}

// PickMIME берём явный MIME, затем из data:URI, иначе fallback.
func PickMIME(explicit, hint, fallback string) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	return fallback
}
