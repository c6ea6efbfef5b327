package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// GFM so the report tables render as tables.
var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// CleanMarkdown strips outer wrapping code blocks so stored report bodies
// are pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		// Generic code block strip
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown checks if the string parses as Markdown. Goldmark is
// very permissive, so this is a basic sanity check.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}

// RenderHTML converts a markdown body to an HTML fragment.
func RenderHTML(markdown string) (string, error) {
	cleaned := CleanMarkdown(markdown)
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(cleaned), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f5f5f5; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderPage renders a report as a standalone HTML page.
func RenderPage(rep *Report) (string, error) {
	body, err := RenderHTML(rep.Markdown)
	if err != nil {
		return "", err
	}
	title := fmt.Sprintf("Valuation Report %s", rep.Symbol)
	return fmt.Sprintf(pageShell, title, body), nil
}
