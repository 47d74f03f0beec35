package service

import (
	"fmt"
	htmlstd "html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	videoLinePattern = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s<>]+)>?\s*$`)
	videoSrcPattern  = regexp.MustCompile(`^https://(?:www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`)
	videoTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`)
	listIndexPattern = regexp.MustCompile(`^\d+\.\s+`)
)

// VideoEmbed 是识别出的视频链接。
type VideoEmbed struct {
	Platform     string `json:"platform"`
	Source       string `json:"source"`
	EmbedURL     string `json:"embed_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func buildContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-platform").OnElements("div")
	policy.AllowAttrs("src").Matching(videoSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy").OnElements("iframe")
	return policy
}

// ParseVideoURL 识别 YouTube 与 Vimeo 链接，返回可嵌入的播放器地址。
func ParseVideoURL(raw string) (VideoEmbed, bool) {
	trimmed := normalizeVideoURL(strings.Trim(strings.TrimSpace(raw), "<>"))
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil {
		return VideoEmbed{}, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return VideoEmbed{}, false
	}
	if parsed.Hostname() == "" {
		return VideoEmbed{}, false
	}

	if embed, ok := parseYouTube(parsed, trimmed); ok {
		return embed, true
	}
	return parseVimeo(parsed, trimmed)
}

// embedVideoLinks 把独占一行的视频链接替换为 iframe，代码块、引用与列表中的链接保持原样。
func embedVideoLinks(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || isIndentedCode(line) || skipEmbedLine(trimmed) {
			continue
		}

		match := videoLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		embed, ok := ParseVideoURL(match[1])
		if !ok {
			continue
		}
		lines[i] = videoEmbedHTML(embed)
	}
	return strings.Join(lines, "\n")
}

func fenceMarker(line string) string {
	if strings.HasPrefix(line, "```") {
		return "```"
	}
	if strings.HasPrefix(line, "~~~") {
		return "~~~"
	}
	return ""
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func skipEmbedLine(line string) bool {
	if line == "" || strings.HasPrefix(line, ">") {
		return true
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}
	return listIndexPattern.MatchString(line)
}

func normalizeVideoURL(raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	for _, prefix := range []string{"youtube.com/", "www.youtube.com/", "m.youtube.com/", "youtu.be/", "vimeo.com/", "www.vimeo.com/"} {
		if strings.HasPrefix(lower, prefix) {
			return "https://" + raw
		}
	}
	return raw
}

func parseYouTube(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	var videoID string

	switch {
	case host == "youtu.be":
		videoID = strings.Trim(u.Path, "/")
	case isHostOrSubdomain(host, "youtube.com"):
		path := strings.Trim(u.Path, "/")
		switch {
		case path == "watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			videoID = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			videoID = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "live/"):
			videoID = strings.TrimPrefix(path, "live/")
		}
	default:
		return VideoEmbed{}, false
	}
	if i := strings.Index(videoID, "/"); i >= 0 {
		videoID = videoID[:i]
	}
	if videoID == "" {
		return VideoEmbed{}, false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("playsinline", "1")
	if start := youTubeStart(u); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}

	return VideoEmbed{
		Platform:     "youtube",
		Source:       source,
		EmbedURL:     fmt.Sprintf("https://www.youtube-nocookie.com/embed/%s?%s", url.PathEscape(videoID), values.Encode()),
		ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", url.PathEscape(videoID)),
	}, true
}

func youTubeStart(u *url.URL) int {
	query := u.Query()
	value := query.Get("start")
	if value == "" {
		value = query.Get("t")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return max(seconds, 0)
	}

	total := 0
	for _, match := range videoTimePattern.FindAllStringSubmatch(value, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	return total
}

func parseVimeo(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "vimeo.com") {
		return VideoEmbed{}, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if host == "player.vimeo.com" && len(segments) >= 2 && segments[0] == "video" {
		segments = segments[1:]
	}
	if len(segments) == 0 || !onlyDigits(segments[0]) {
		return VideoEmbed{}, false
	}
	return VideoEmbed{
		Platform: "vimeo",
		Source:   source,
		EmbedURL: "https://player.vimeo.com/video/" + segments[0],
	}, true
}

func videoEmbedHTML(embed VideoEmbed) string {
	return fmt.Sprintf(
		`<div class="video-embed" data-video-platform="%s">`+
			`<iframe src="%s" title="%s" loading="lazy" allow="accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin"></iframe>`+
			`</div>`,
		htmlstd.EscapeString(embed.Platform),
		htmlstd.EscapeString(embed.EmbedURL),
		htmlstd.EscapeString(embed.Platform+" video"),
	)
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func isHostOrSubdomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	return host == domain || strings.HasSuffix(host, "."+domain)
}
