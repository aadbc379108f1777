package judgewire

import (
	"regexp"
	"strings"
)

// AttachmentKind is how an attachment should be previewed.
type AttachmentKind string

const (
	KindImage   AttachmentKind = "image"
	KindVideo   AttachmentKind = "video"
	KindGeneric AttachmentKind = "generic"
)

// Attachment is a file bound to a message.
type Attachment struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	DisplayName string         `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	URL         string         `json:"url,omitempty" yaml:"url,omitempty"`
	Kind        AttachmentKind `json:"kind" yaml:"kind"`
}

var (
	imageExtPattern = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|bmp|svg|heic|avif|tiff?)$`)
	videoExtPattern = regexp.MustCompile(`(?i)\.(mp4|mov|webm|mkv|avi|m4v|mpe?g)$`)
)

// KindHints is everything a record may tell us about an attachment's type.
type KindHints struct {
	IsImage  bool
	IsVideo  bool
	MIME     string
	URL      string
	FileName string
}

// InferKind resolves an attachment kind. Explicit flags win. A MIME type is
// trusted unless the file extension says otherwise; then the URL extension,
// then the file name extension, then generic.
func InferKind(h KindHints) AttachmentKind {
	switch {
	case h.IsImage:
		return KindImage
	case h.IsVideo:
		return KindVideo
	}

	ext := kindFromExtension(h.URL)
	if ext == "" {
		ext = kindFromExtension(h.FileName)
	}

	if mime := kindFromMIME(h.MIME); mime != "" && (ext == "" || ext == mime) {
		return mime
	}
	if ext != "" {
		return ext
	}
	return KindGeneric
}

func kindFromMIME(mime string) AttachmentKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	}
	return ""
}

func kindFromExtension(name string) AttachmentKind {
	// Drop query string and fragment from URLs.
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch {
	case name == "":
		return ""
	case imageExtPattern.MatchString(name):
		return KindImage
	case videoExtPattern.MatchString(name):
		return KindVideo
	}
	return ""
}
