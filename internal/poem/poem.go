package poem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Poem is the parsed contents of one input markdown file.
type Poem struct {
	Title  string
	Author string
	Body   string
	Path   string
}

// заголовочные ключи: испанские и английские варианты.
var titleKeys = map[string]bool{"titulo": true, "título": true, "title": true}
var authorKeys = map[string]bool{"autor": true, "author": true}

// Parse reads a poem markdown file. Expected format:
//
//	Titulo: My Title
//	Autor: Ada
//
//	<poem body>
//
// Title falls back to the file name, author to empty. The body is stripped of
// leading blank lines.
func Parse(path string) (Poem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Poem{}, err
	}
	p := ParseContent(string(data))
	p.Path = path
	if p.Title == "" {
		base := filepath.Base(path)
		p.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if p.Body == "" {
		return Poem{}, fmt.Errorf("файл %s не содержит текста стихотворения", path)
	}
	return p, nil
}

// ParseContent extracts title, author and body from raw markdown text.
func ParseContent(content string) Poem {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")

	var title, author string

	// Заголовки ищем в первых строках, допускаем произвольный порядок.
	headerEnd := 0
	headerCount := 0
	for i, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		if trimmed == "" {
			continue
		}
		key, val, ok := splitHeader(trimmed)
		if ok && headerCount < 2 {
			if titleKeys[key] && title == "" {
				title = val
				headerCount++
				headerEnd = i + 1
				continue
			}
			if authorKeys[key] && author == "" {
				author = val
				headerCount++
				headerEnd = i + 1
				continue
			}
		}
		// Первая строка, не являющаяся заголовком, начинает текст.
		headerEnd = i
		break
	}

	body := strings.Join(lines[headerEnd:], "\n")
	body = strings.TrimLeft(body, "\n")
	body = strings.TrimRight(body, " \n")

	return Poem{Title: title, Author: author, Body: body}
}

func splitHeader(line string) (key, val string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(line[:idx])), strings.TrimSpace(line[idx+1:]), true
}

// DetectLanguage returns a best-effort 2-letter code. Spanish is recognized by
// its accented characters; everything else defaults to English.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}
	for _, c := range text {
		if strings.ContainsRune("áéíóúñÁÉÍÓÚÑ¿¡", c) {
			return "es"
		}
	}
	return "en"
}

// SanitizeFilename keeps alphanumerics, spaces, dashes and underscores.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, c := range s {
		if isAlnum(c) || c == ' ' || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		strings.ContainsRune("áéíóúñÁÉÍÓÚÑ", c)
}

// BaseName builds the per-poem output name: "<idx>_<title>" sanitized and
// capped at 80 runes to avoid OS path errors. idx is the 1-based batch
// position of the poem.
func BaseName(idx int, title string) string {
	raw := fmt.Sprintf("%d_%s", idx, title)
	safe := SanitizeFilename(raw)
	runes := []rune(safe)
	if len(runes) > 80 {
		safe = string(runes[:80])
	}
	return safe
}
