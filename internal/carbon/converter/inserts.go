package converter

import (
	"fmt"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InsertHTML возвращает вставку, которая добавляет фрагмент snippet в текущего родителя
// перед параграфом и оставляет родителя прежним.
func InsertHTML(snippet string) (InsertCallback, error) {
	nodes, err := html.ParseFragment(strings.NewReader(snippet), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("parse insert: %w", err)
	}

	return func(doc *dom.Document, parent *html.Node) *html.Node {
		for _, n := range nodes {
			doc.AppendTo(parent, doc.Import(n))
		}
		return parent
	}, nil
}

// InsertWrapper возвращает вставку, которая создает элемент tag и переносит в него
// текущий параграф и все следующие узлы того же уровня.
func InsertWrapper(tag string, attrs ...html.Attribute) InsertCallback {
	return func(doc *dom.Document, parent *html.Node) *html.Node {
		return doc.AppendElement(parent, tag, attrs...)
	}
}
