package ask

import (
	"net/url"
	"strings"

	"github.com/istock-app/istock-rag/pkg/model"
)

const (
	// placeholderTitle marks a record whose title could not be resolved.
	// Such records are never cited.
	placeholderTitle = "Reference"

	// syntheticHost backs the placeholder URI minted for sources that carry a
	// title but no usable link.
	syntheticHost = "rag.istock.app"
)

// Field paths probed for each record, in priority order. The upstream service
// has shipped all of these names at one point or another.
var (
	uriPaths = [][]string{
		{"sourceUri"},
		{"uri"},
		{"source", "uri"},
		{"metadata", "sourceUri"},
		{"metadata", "source"},
		{"ragContext", "sourceUri"},
		{"ragContext", "uri"},
	}

	titlePaths = [][]string{
		{"sourceTitle"},
		{"title"},
		{"source", "title"},
		{"metadata", "sourceTitle"},
		{"metadata", "title"},
		{"ragContext", "sourceTitle"},
		{"ragContext", "title"},
	}
)

func firstString(rec any, paths [][]string) string {
	for _, path := range paths {
		if s := stringField(rec, path...); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// dedupeSources maps context records onto canonical sources, keyed by
// lower-cased trimmed title, first seen wins. Records without a genuine title
// are dropped entirely, so every emitted title is unique and never the
// placeholder.
func dedupeSources(records []any) []model.Source {
	sources := []model.Source{}
	seen := map[string]bool{}

	for _, rec := range records {
		title := strings.TrimSpace(firstString(rec, titlePaths))
		if title == "" || title == placeholderTitle {
			continue
		}

		key := strings.ToLower(title)
		if seen[key] {
			continue
		}
		seen[key] = true

		sources = append(sources, model.Source{
			URI:   canonicalURI(firstString(rec, uriPaths), title),
			Title: title,
		})
	}

	return sources
}

// canonicalURI keeps absolute http(s)/data URIs as-is and synthesizes a
// stable placeholder link from the title otherwise.
func canonicalURI(uri, title string) string {
	uri = strings.TrimSpace(uri)
	for _, prefix := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(uri, prefix) {
			return uri
		}
	}
	return "https://" + syntheticHost + "/" + url.PathEscape(title)
}
