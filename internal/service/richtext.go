package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	richTextPolicy = bluemonday.UGCPolicy()
)

// sanitizeRichText 清洗编辑器提交的 HTML，只保留 UGC 白名单内的标签。
func sanitizeRichText(input string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(input))
}

// renderMarkdown 将新闻正文渲染为清洗后的 HTML。
func renderMarkdown(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return richTextPolicy.Sanitize(buf.String()), nil
}
