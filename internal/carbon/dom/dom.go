// Пакет dom предоставляет HTML-документ, который строится во время одной конвертации.
// Документ - тонкая обертка над деревом golang.org/x/net/html: создание элементов,
// добавление в родителя (или в корень, если родитель не задан), импорт узлов и сериализация.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document - результирующее HTML-дерево. Не потокобезопасен: принадлежит одной конвертации.
type Document struct {
	root *html.Node
}

func NewDocument() *Document {
	return &Document{root: &html.Node{Type: html.DocumentNode}}
}

// Root возвращает корневой узел документа.
func (d *Document) Root() *html.Node {
	return d.root
}

// DocumentElement возвращает первый элемент верхнего уровня или nil.
func (d *Document) DocumentElement() *html.Node {
	for n := d.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}

func (d *Document) CreateElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func (d *Document) CreateText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// AppendTo добавляет child последним потомком parent. Если parent == nil, узел добавляется в корень документа.
// Узел, уже находящийся в дереве, предварительно отсоединяется.
func (d *Document) AppendTo(parent, child *html.Node) *html.Node {
	if parent == nil {
		parent = d.root
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	return child
}

// AppendElement создает элемент и добавляет его в parent.
func (d *Document) AppendElement(parent *html.Node, tag string, attrs ...html.Attribute) *html.Node {
	return d.AppendTo(parent, d.CreateElement(tag, attrs...))
}

// Import возвращает глубокую копию узла, не привязанную ни к какому дереву.
func (d *Document) Import(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(d.Import(c))
	}
	return clone
}

// Render сериализует все узлы верхнего уровня по порядку.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() (string, error) {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Attr - сокращение для html.Attribute.
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// GetAttr возвращает значение атрибута key или пустую строку.
func GetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// InnerHTML сериализует потомков узла.
func InnerHTML(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
