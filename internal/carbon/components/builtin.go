package components

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/document"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/formats"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const defaultLayout = "layout-single-column"

// Builtin возвращает стандартный набор рендереров. rawPolicy - очистка HTMLComponent, nil оставляет HTML как есть.
func Builtin(compositor *formats.Compositor, rawPolicy formats.Sanitizer) []Renderer {
	return []Renderer{
		Section{},
		Layout{},
		&Paragraph{Compositor: compositor},
		Figure{},
		List{},
		Embedded{},
		&RawHTML{Policy: rawPolicy},
	}
}

type Section struct{}

func (Section) Name() string { return "Section" }

func (Section) Parse(_ *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	return doc.AppendElement(parent, "section"), nil
}

type Layout struct{}

func (Layout) Name() string { return "Layout" }

func (Layout) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	class := node.AttrString("type")
	if class == "" {
		class = defaultLayout
	}
	return doc.AppendElement(parent, "div", dom.Attr("class", class)), nil
}

// Теги, в которые может превратиться параграф.
var paragraphTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "li": true, "figcaption": true,
}

// Paragraph рендерит текст параграфа вместе с форматированием.
type Paragraph struct {
	Compositor *formats.Compositor
}

func (*Paragraph) Name() string { return "Paragraph" }

func (p *Paragraph) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	tag := strings.ToLower(node.ParagraphType)
	if !paragraphTags[tag] {
		if tag != "" {
			slog.Warn("Unknown paragraph type, rendering as p", "paragraphType", node.ParagraphType)
		}
		tag = "p"
	}

	el := doc.AppendElement(parent, tag)
	if node.Text == "" {
		return el, nil
	}

	if err := formats.CheckOrder(node.Formats); err != nil {
		slog.Warn("Paragraph formats are out of order, tags may be misnested", "err", err)
	}

	compositor := p.Compositor
	if compositor == nil {
		compositor = formats.NewCompositor(nil, nil)
	}
	if _, err := compositor.Render(node.Text, node.Formats, doc, el); err != nil {
		return nil, err
	}
	return el, nil
}

// Figure - изображение с необязательной подписью.
type Figure struct{}

func (Figure) Name() string { return "Figure" }

func (Figure) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	figure := doc.AppendElement(parent, "figure")

	caption := node.AttrString("caption")
	alt := node.AttrString("alt")
	if alt == "" {
		alt = caption
	}

	attrs := []html.Attribute{dom.Attr("src", node.AttrString("src"))}
	attrs = appendSize(attrs, node)
	attrs = append(attrs, dom.Attr("alt", alt))
	doc.AppendElement(figure, "img", attrs...)

	appendCaption(doc, figure, caption)
	return figure, nil
}

// List - маркированный или нумерованный список, элементы приходят потомками.
type List struct{}

func (List) Name() string { return "ListComponent" }

func (List) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	tag := "ul"
	if strings.EqualFold(node.AttrString("tagName"), "ol") {
		tag = "ol"
	}
	return doc.AppendElement(parent, tag), nil
}

// Embedded - встраиваемый контент провайдера (видео, изображения, посты).
type Embedded struct{}

func (Embedded) Name() string { return "EmbeddedComponent" }

func (Embedded) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	attrs := []html.Attribute{dom.Attr("class", "embed")}
	if provider := node.AttrString("provider"); provider != "" {
		attrs = append(attrs, dom.Attr("data-provider", provider))
	}
	figure := doc.AppendElement(parent, "figure", attrs...)

	url := node.AttrString("url")
	if node.AttrString("type") == "image" {
		imgAttrs := []html.Attribute{dom.Attr("src", url)}
		imgAttrs = appendSize(imgAttrs, node)
		imgAttrs = append(imgAttrs, dom.Attr("alt", node.AttrString("caption")))
		doc.AppendElement(figure, "img", imgAttrs...)
	} else {
		src := node.AttrString("embedUrl")
		if src == "" {
			src = url
		}
		frameAttrs := []html.Attribute{dom.Attr("src", src)}
		frameAttrs = appendSize(frameAttrs, node)
		frameAttrs = append(frameAttrs, dom.Attr("allowfullscreen", ""))
		doc.AppendElement(figure, "iframe", frameAttrs...)
	}

	appendCaption(doc, figure, node.AttrString("caption"))
	return figure, nil
}

// RawHTML вставляет HTML из поля html как есть или после очистки политикой.
type RawHTML struct {
	Policy formats.Sanitizer
}

func (*RawHTML) Name() string { return "HTMLComponent" }

func (r *RawHTML) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	wrapper := doc.AppendElement(parent, "div", dom.Attr("class", "html-component"))

	raw := node.AttrString("html")
	if raw == "" {
		return wrapper, nil
	}

	if r.Policy != nil {
		var sb strings.Builder
		if err := r.Policy.SanitizeReaderToWriter(strings.NewReader(raw), &sb); err != nil {
			return nil, fmt.Errorf("sanitize html component: %w", err)
		}
		raw = sb.String()
	}

	nodes, err := html.ParseFragment(strings.NewReader(raw), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return nil, fmt.Errorf("parse html component: %w", err)
	}
	for _, n := range nodes {
		doc.AppendTo(wrapper, n)
	}
	return wrapper, nil
}

func appendSize(attrs []html.Attribute, node *document.Node) []html.Attribute {
	if w := node.AttrInt("width"); w > 0 {
		attrs = append(attrs, dom.Attr("width", strconv.Itoa(w)))
	}
	if h := node.AttrInt("height"); h > 0 {
		attrs = append(attrs, dom.Attr("height", strconv.Itoa(h)))
	}
	return attrs
}

func appendCaption(doc *dom.Document, parent *html.Node, caption string) {
	if caption == "" {
		return
	}
	figcaption := doc.AppendElement(parent, "figcaption")
	doc.AppendTo(figcaption, doc.CreateText(caption))
}
