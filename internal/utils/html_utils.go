package utils

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const emoticonClass = "emoticon"

// EnhanceHTMLContent hardens images in rendered post HTML and turns a
// paragraph holding nothing but a YouTube link into an embedded player.
func EnhanceHTMLContent(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
		if alt, ok := s.Attr("alt"); ok && strings.HasPrefix(alt, ":") && strings.HasSuffix(alt, ":") {
			s.AddClass(emoticonClass)
		}
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, "http") || strings.Contains(text, " ") {
			return
		}
		if id := youtubeID(text); id != "" {
			s.ReplaceWithHtml(`<div class="video-container"><iframe src="https://www.youtube.com/embed/` + id + `" frameborder="0" allowfullscreen></iframe></div>`)
		}
	})

	// goquery renders full document tags if missing, we just want the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}
	return html
}

// YouTube 视频 id 固定 11 位，其余一律不嵌入
var youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

func youtubeID(link string) string {
	var id string
	switch {
	case strings.Contains(link, "youtube.com/watch?v="):
		parts := strings.SplitN(link, "v=", 2)
		id = strings.Split(parts[1], "&")[0]
	case strings.Contains(link, "youtu.be/"):
		parts := strings.SplitN(link, "youtu.be/", 2)
		id = strings.Split(parts[1], "?")[0]
	}
	if !youtubeIDPattern.MatchString(id) {
		return ""
	}
	return id
}
