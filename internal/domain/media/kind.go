package media

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the primary media type of an artwork.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

func (k Kind) Valid() bool {
	switch k {
	case KindImage, KindVideo, KindAudio:
		return true
	}
	return false
}

var (
	videoExts = map[string]bool{"mp4": true, "webm": true, "ogg": true, "mov": true}
	audioExts = map[string]bool{"mp3": true, "wav": true, "ogg": true, "m4a": true, "aac": true}
)

// KindFromURL classifies a media URL by its file extension. It is only the
// fallback for records stored without an explicit kind. The video set is
// consulted first, so ".ogg" resolves to video.
func KindFromURL(raw string) Kind {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch {
	case videoExts[ext]:
		return KindVideo
	case audioExts[ext]:
		return KindAudio
	default:
		return KindImage
	}
}

// KindFromMIME classifies a MIME type such as "audio/ogg". ok is false for
// anything that is not image, video or audio.
func KindFromMIME(mime string) (Kind, bool) {
	major, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mime)), "/")
	switch major {
	case "image":
		return KindImage, true
	case "video":
		return KindVideo, true
	case "audio":
		return KindAudio, true
	}
	return "", false
}
