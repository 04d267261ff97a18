package utils

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	postMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	postPolicy = newPostPolicy()
)

// newPostPolicy 帖子正文白名单：UGC 基础上允许图片，外链新窗口打开
func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// RenderPost converts a raw post body to sanitized HTML. It never returns an
// empty string for a non-empty body.
func RenderPost(body string) string {
	var buf bytes.Buffer
	if err := postMarkdown.Convert([]byte(body), &buf); err != nil {
		return "<p>" + html.EscapeString(body) + "</p>"
	}
	return EnhanceHTMLContent(postPolicy.Sanitize(buf.String()))
}
