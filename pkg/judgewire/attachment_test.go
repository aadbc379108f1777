package judgewire

import "testing"

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		hints KindHints
		want  AttachmentKind
	}{
		{"image flag wins", KindHints{IsImage: true, URL: "a.mp4"}, KindImage},
		{"video flag", KindHints{IsVideo: true}, KindVideo},
		{"mime", KindHints{MIME: "image/png"}, KindImage},
		{"mime with agreeing extension", KindHints{MIME: "video/mp4", FileName: "clip.mp4"}, KindVideo},
		{"extension contradicts mime", KindHints{MIME: "application/octet-stream", URL: "https://x/y.jpg"}, KindImage},
		{"extension beats wrong mime", KindHints{MIME: "image/png", FileName: "clip.mov"}, KindVideo},
		{"url extension with query", KindHints{URL: "https://cdn/x/photo.JPEG?sig=1#frag"}, KindImage},
		{"url before filename", KindHints{URL: "https://cdn/x/clip.webm", FileName: "photo.png"}, KindVideo},
		{"filename when url has no extension", KindHints{URL: "https://cdn/blob/123", FileName: "photo.gif"}, KindImage},
		{"pdf is generic", KindHints{FileName: "brief.pdf"}, KindGeneric},
		{"nothing", KindHints{}, KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferKind(tt.hints); got != tt.want {
				t.Errorf("InferKind(%+v) = %s, want %s", tt.hints, got, tt.want)
			}
		})
	}
}
