package service

import (
	"strings"
	"testing"
)

func TestParseVideoURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantEmbed string
		platform  string
	}{
		{name: "youtube watch", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1m5s", wantOK: true, wantEmbed: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?playsinline=1&rel=0&start=65", platform: "youtube"},
		{name: "youtu.be without scheme", input: "youtu.be/dQw4w9WgXcQ", wantOK: true, wantEmbed: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?playsinline=1&rel=0", platform: "youtube"},
		{name: "shorts", input: "https://youtube.com/shorts/abc123", wantOK: true, wantEmbed: "https://www.youtube-nocookie.com/embed/abc123?playsinline=1&rel=0", platform: "youtube"},
		{name: "vimeo", input: "https://vimeo.com/76979871", wantOK: true, wantEmbed: "https://player.vimeo.com/video/76979871", platform: "vimeo"},
		{name: "vimeo player", input: "https://player.vimeo.com/video/76979871", wantOK: true, wantEmbed: "https://player.vimeo.com/video/76979871", platform: "vimeo"},
		{name: "lookalike host", input: "https://notyoutube.com/watch?v=abc", wantOK: false},
		{name: "plain image", input: "https://school.example/photo.jpg", wantOK: false},
		{name: "javascript", input: "javascript:alert(1)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed, ok := ParseVideoURL(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseVideoURL(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if embed.EmbedURL != tt.wantEmbed {
				t.Fatalf("embed url = %q, want %q", embed.EmbedURL, tt.wantEmbed)
			}
			if embed.Platform != tt.platform {
				t.Fatalf("platform = %q, want %q", embed.Platform, tt.platform)
			}
		})
	}
}

func TestRenderMarkdownEmbedsVideos(t *testing.T) {
	source := "Shikoni videon:\n\nhttps://www.youtube.com/watch?v=dQw4w9WgXcQ\n\n```\nhttps://www.youtube.com/watch?v=insidecode\n```\n\n> https://vimeo.com/1\n"

	rendered, err := RenderMarkdown(source)
	if err != nil {
		t.Fatalf("RenderMarkdown returned error: %v", err)
	}
	if strings.Count(rendered, "<iframe") != 1 {
		t.Fatalf("expected exactly one iframe, got: %s", rendered)
	}
	if !strings.Contains(rendered, `src="https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?playsinline=1&amp;rel=0"`) {
		t.Fatalf("expected youtube embed src, got: %s", rendered)
	}
	if !strings.Contains(rendered, "insidecode") {
		t.Fatalf("fenced code should be kept verbatim, got: %s", rendered)
	}
}

func TestRenderMarkdownStripsForeignIframes(t *testing.T) {
	rendered, err := RenderMarkdown(`<iframe src="https://evil.example/embed"></iframe><script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("RenderMarkdown returned error: %v", err)
	}
	if strings.Contains(rendered, "evil.example") || strings.Contains(rendered, "<script") {
		t.Fatalf("expected unsafe markup to be removed, got: %s", rendered)
	}
}

func TestGalleryVideoUsesEmbedURL(t *testing.T) {
	svc := NewGalleryService(setupTestDB(t))

	item, err := svc.Create(GalleryInput{
		Title:     "Dita e Hapur",
		MediaURL:  "https://youtu.be/dQw4w9WgXcQ",
		MediaType: "video",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !strings.HasPrefix(item.MediaURL, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ") {
		t.Fatalf("expected embed url, got %q", item.MediaURL)
	}
	if item.ThumbnailURL != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Fatalf("expected derived thumbnail, got %q", item.ThumbnailURL)
	}

	updated, err := svc.Update(item.ID, GalleryInput{
		Title:        item.Title,
		MediaURL:     item.MediaURL,
		MediaType:    "video",
		ThumbnailURL: "/uploads/gallery/cover.jpg",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.MediaURL != item.MediaURL || updated.ThumbnailURL != "/uploads/gallery/cover.jpg" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}
