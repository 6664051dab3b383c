package service

import (
	"bytes"
	"context"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/xxxsen/atomdocs/internal/model"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	snippetRadius      = 60
)

const (
	scoreContent = 1
	scoreMeta    = 2
	scoreTitle   = 3
)

var (
	markdown    = goldmark.New()
	stripPolicy = bluemonday.StrictPolicy()
)

type SearchResult struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	CategoryName string   `json:"category_name"`
	Tags         []string `json:"tags"`
	Snippet      string   `json:"snippet"`
	Score        int      `json:"score"`

	order int
}

// Search matches every whitespace separated term of query, case
// insensitively, against title, tags, description and the plain text of
// the content. Title hits rank above tag and description hits, which rank
// above body hits.
func (s *ContentService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0)
	for _, p := range data.Pages {
		body := PlainText(p.Content)
		score, ok := scorePage(p, strings.ToLower(body), terms)
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			ID:           p.ID,
			Title:        p.Title,
			Slug:         p.Slug,
			Description:  p.Description,
			Category:     p.Category,
			CategoryName: CategoryName(data.Categories, p.Category),
			Tags:         p.Tags,
			Snippet:      snippet(body, terms),
			Score:        score,
			order:        p.Order,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].order != results[j].order {
			return results[i].order < results[j].order
		}
		return results[i].Title < results[j].Title
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scorePage(p model.Page, body string, terms []string) (int, bool) {
	title := strings.ToLower(p.Title)
	description := strings.ToLower(p.Description)
	tags := strings.ToLower(strings.Join(p.Tags, " "))
	total := 0
	for _, term := range terms {
		switch {
		case strings.Contains(title, term):
			total += scoreTitle
		case strings.Contains(tags, term), strings.Contains(description, term):
			total += scoreMeta
		case strings.Contains(body, term):
			total += scoreContent
		default:
			return 0, false
		}
	}
	return total, true
}

// PlainText renders markdown source down to its visible text with
// whitespace collapsed. Inline and block HTML are reduced to their text.
func PlainText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(src))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			writeLines(&buf, n, src)
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			var raw bytes.Buffer
			writeLines(&raw, n, src)
			buf.WriteString(html.UnescapeString(stripPolicy.Sanitize(raw.String())))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

func writeLines(buf *bytes.Buffer, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
		buf.WriteByte(' ')
	}
}

func snippet(body string, terms []string) string {
	if body == "" {
		return ""
	}
	lower := strings.ToLower(body)
	pos := -1
	for _, term := range terms {
		if idx := strings.Index(lower, term); idx >= 0 && (pos < 0 || idx < pos) {
			pos = idx
		}
	}
	runes := []rune(body)
	if pos < 0 {
		if len(runes) <= 2*snippetRadius {
			return body
		}
		return string(runes[:2*snippetRadius]) + "…"
	}
	// byte offset to rune offset; lower casing can change byte lengths so
	// clamp to the rune count
	center := len([]rune(lower[:pos]))
	if center > len(runes) {
		center = len(runes)
	}
	start := center - snippetRadius
	if start < 0 {
		start = 0
	}
	end := center + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}
