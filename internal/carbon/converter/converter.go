// Пакет converter обходит дерево документа Carbon и строит по нему HTML.
//
// Основные возможности:
//   - Диспетчеризация узлов по имени компонента через реестр рендереров.
//   - Вставка внешнего содержимого между параграфами (CustomInserts) по номеру параграфа и длине текста.
//   - Пользовательские генераторы атрибутов тегов форматирования.
//   - Независимое состояние каждой конвертации: один Converter можно использовать из нескольких горутин.
package converter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/components"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/document"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/formats"
	stack_error "github.com/candybanana/carbon-json-to-html/internal/carbon/stack-error"
	"golang.org/x/net/html"
)

// Параграф длиннее порога всегда может получить вставку.
const insertThreshold = 120

// InsertCallback добавляет внешнее содержимое и возвращает нового родителя для текущего
// параграфа и всех следующих узлов того же уровня. nil означает корень документа.
type InsertCallback func(doc *dom.Document, parent *html.Node) *html.Node

// CustomInserts - вставки по номеру параграфа, начиная с 1.
type CustomInserts map[int]InsertCallback

type Converter struct {
	registry *components.Registry
}

type options struct {
	customAttrs     formats.AttrGenerators
	formatSanitizer formats.Sanitizer
	rawPolicy       formats.Sanitizer
	extra           []components.Renderer
}

type Option func(*options)

// WithCustomAttrs задает генераторы атрибутов по типу тега форматирования.
func WithCustomAttrs(attrs formats.AttrGenerators) Option {
	return func(o *options) {
		o.customAttrs = attrs
	}
}

// WithFormatSanitizer заменяет политику очистки текста параграфов.
func WithFormatSanitizer(s formats.Sanitizer) Option {
	return func(o *options) {
		o.formatSanitizer = s
	}
}

// WithRawHTMLPolicy включает очистку HTMLComponent указанной политикой.
func WithRawHTMLPolicy(s formats.Sanitizer) Option {
	return func(o *options) {
		o.rawPolicy = s
	}
}

// WithComponent регистрирует дополнительный рендерер поверх встроенных.
func WithComponent(r components.Renderer) Option {
	return func(o *options) {
		o.extra = append(o.extra, r)
	}
}

func New(opts ...Option) *Converter {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	compositor := formats.NewCompositor(o.formatSanitizer, o.customAttrs)
	registry := components.NewRegistry(components.Builtin(compositor, o.rawPolicy)...)
	for _, r := range o.extra {
		registry.Register(r.Name(), r)
	}
	return &Converter{registry: registry}
}

// AddComponent регистрирует рендерер под именем name. Уже идущие конвертации его не увидят.
func (c *Converter) AddComponent(name string, r components.Renderer) *Converter {
	c.registry.Register(name, r)
	return c
}

// Convert конвертирует JSON документа в HTML.
func (c *Converter) Convert(json string, inserts CustomInserts) (string, error) {
	return c.ConvertReader(strings.NewReader(json), inserts)
}

func (c *Converter) ConvertReader(r io.Reader, inserts CustomInserts) (string, error) {
	doc, err := document.ParseJSON(r)
	if err != nil {
		return "", err
	}
	return c.ConvertDocument(doc, inserts)
}

// ConvertDocument конвертирует уже разобранный документ.
func (c *Converter) ConvertDocument(d *document.Document, inserts CustomInserts) (string, error) {
	if d == nil || d.Sections == nil {
		return "", apierrors.ErrNotCarbonFormat
	}

	cv := &conversion{
		doc:            dom.NewDocument(),
		renderers:      c.registry.Snapshot(),
		inserts:        inserts,
		firstInsert:    firstKey(inserts),
		paragraphIndex: 1,
	}

	if err := cv.render(d.Sections, nil, ""); err != nil {
		return "", err
	}

	out, err := cv.doc.String()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// conversion - состояние одного вызова конвертации.
type conversion struct {
	doc            *dom.Document
	renderers      map[string]components.Renderer
	inserts        CustomInserts
	firstInsert    int
	paragraphIndex int
}

func (cv *conversion) render(nodes []document.Node, parent *html.Node, path string) error {
	for i := range nodes {
		node := &nodes[i]
		nodePath := fmt.Sprintf("%s/%d", path, i)
		component := components.Normalize(node.Component)

		if component == "Paragraph" && node.ParagraphType == "p" {
			parent = cv.applyInsert(nodes, i, parent)
			cv.paragraphIndex++
		}

		renderer, ok := cv.renderers[component]
		if !ok {
			return stack_error.TrackErrorStack(apierrors.ErrUnknownComponent.WithFormattedMessage(component)).
				AddContext("path", nodePath).
				AddContext("component", component)
		}

		el, err := renderer.Parse(node, cv.doc, parent)
		if err != nil {
			return stack_error.TrackErrorStack(err).
				AddContext("path", nodePath).
				AddContext("component", component)
		}

		if len(node.Components) > 0 {
			if err := cv.render(node.Components, el, nodePath); err != nil {
				return stack_error.TrackErrorStack(err)
			}
		}
	}
	return nil
}

// applyInsert вызывает вставку для текущего параграфа, если он достаточно длинный
// или если это первая вставка и длина текста узлов этого уровня до него включительно больше порога.
func (cv *conversion) applyInsert(nodes []document.Node, i int, parent *html.Node) *html.Node {
	callback, ok := cv.inserts[cv.paragraphIndex]
	if !ok || callback == nil {
		return parent
	}

	totalPrevChars := 0
	for j := 0; j <= i; j++ {
		totalPrevChars += nodes[j].TextLen()
	}

	textLen := nodes[i].TextLen()
	if textLen > insertThreshold || (cv.paragraphIndex == cv.firstInsert && totalPrevChars > insertThreshold) {
		slog.Debug("Apply custom insert",
			"paragraph", cv.paragraphIndex,
			"textLen", textLen,
			"totalPrevChars", totalPrevChars)
		return callback(cv.doc, parent)
	}
	return parent
}

func firstKey(inserts CustomInserts) int {
	first, found := 0, false
	for k := range inserts {
		if !found || k < first {
			first, found = k, true
		}
	}
	return first
}
