// Пакет formats накладывает диапазоны форматирования (b, i, a и т.д.) на текст параграфа
// и превращает результат в очищенные строчные HTML-узлы.
//
// Теги вставляются в текст по порядку диапазонов, смещение каждой следующей вставки
// сдвигается на длину уже вставленных тегов. Точный результат гарантируется только для
// диапазонов, идущих по возрастанию и не пересекающихся (касание допускается).
package formats

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/document"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
	policy "github.com/candybanana/carbon-json-to-html/internal/carbon/sanitize-policy"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AttrGenerator возвращает атрибуты, которые будут слиты поверх объявленных в диапазоне.
// text - текущий рабочий текст параграфа с уже вставленными тегами.
type AttrGenerator func(attrs map[string]string, text string) map[string]string

// AttrGenerators - генераторы атрибутов по типу тега.
type AttrGenerators map[string]AttrGenerator

// Sanitizer очищает HTML-фрагмент. *bluemonday.Policy удовлетворяет интерфейсу.
type Sanitizer interface {
	SanitizeReaderToWriter(r io.Reader, w io.Writer) error
}

// Compositor не хранит состояния между вызовами и может использоваться параллельно,
// если генераторы атрибутов это допускают.
type Compositor struct {
	sanitizer   Sanitizer
	customAttrs AttrGenerators
}

// NewCompositor создает компоновщик. Если sanitizer == nil, используется policy.FormatPolicy.
func NewCompositor(sanitizer Sanitizer, customAttrs AttrGenerators) *Compositor {
	if sanitizer == nil {
		sanitizer = policy.FormatPolicy
	}
	return &Compositor{sanitizer: sanitizer, customAttrs: customAttrs}
}

// cell - одна кодовая точка рабочего текста. tag отмечает символы вставленных тегов.
type cell struct {
	r   rune
	tag bool
}

type workingText []cell

func newWorkingText(text string) workingText {
	res := make(workingText, 0, len(text))
	for _, r := range text {
		res = append(res, cell{r: r})
	}
	return res
}

// insert вставляет тег в позицию pos (в кодовых точках) и возвращает длину вставки.
func (w *workingText) insert(pos int, tag string) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(*w) {
		pos = len(*w)
	}

	ins := make(workingText, 0, len(tag))
	for _, r := range tag {
		ins = append(ins, cell{r: r, tag: true})
	}

	res := make(workingText, 0, len(*w)+len(ins))
	res = append(res, (*w)[:pos]...)
	res = append(res, ins...)
	res = append(res, (*w)[pos:]...)
	*w = res
	return len(ins)
}

// plain возвращает рабочий текст как есть, вместе с тегами и без экранирования.
func (w workingText) plain() string {
	var sb strings.Builder
	for _, c := range w {
		sb.WriteRune(c.r)
	}
	return sb.String()
}

// markup экранирует символы исходного текста, символы тегов остаются разметкой.
func (w workingText) markup() string {
	var sb strings.Builder
	for _, c := range w {
		if c.tag {
			sb.WriteRune(c.r)
			continue
		}
		switch c.r {
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '&':
			sb.WriteString("&amp;")
		default:
			sb.WriteRune(c.r)
		}
	}
	return sb.String()
}

// ResolveAttributes сливает объявленные атрибуты с результатом генератора для formatType.
// При совпадении ключей побеждает генератор. Исходная карта не изменяется.
func ResolveAttributes(formatType string, attrs map[string]string, text string, customAttrs AttrGenerators) map[string]string {
	res := make(map[string]string, len(attrs))
	for k, v := range attrs {
		res[k] = v
	}

	gen, ok := customAttrs[formatType]
	if !ok || gen == nil {
		return res
	}

	declared := make(map[string]string, len(res))
	for k, v := range res {
		declared[k] = v
	}
	for k, v := range gen(declared, text) {
		res[k] = v
	}
	return res
}

// attributeString строит строку атрибутов вида ` key="value"` с отсортированными ключами.
func attributeString(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attrs[k]))
		sb.WriteByte('"')
	}
	return sb.String()
}

// Markup вставляет теги диапазонов в текст и возвращает фрагмент до очистки.
func (c *Compositor) Markup(text string, ranges []document.FormatRange) string {
	working := newWorkingText(text)
	offset := 0

	for _, f := range ranges {
		attrs := ResolveAttributes(f.Type, f.Attrs, working.plain(), c.customAttrs)

		opening := "<" + f.Type + attributeString(attrs) + ">"
		closing := "</" + f.Type + ">"

		offset += working.insert(f.From+offset, opening)
		offset += working.insert(f.To+offset, closing)
	}

	return working.markup()
}

// Render накладывает форматирование на text, очищает результат и добавляет полученные узлы
// в paragraph. Возвращает добавленные узлы.
func (c *Compositor) Render(text string, ranges []document.FormatRange, doc *dom.Document, paragraph *html.Node) ([]*html.Node, error) {
	fragment := c.Markup(text, ranges)

	var sanitized bytes.Buffer
	if err := c.sanitizer.SanitizeReaderToWriter(strings.NewReader(fragment), &sanitized); err != nil {
		return nil, fmt.Errorf("%w: %w", apierrors.ErrSanitizeFailed, err)
	}

	nodes, err := html.ParseFragment(&sanitized, &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apierrors.ErrSanitizeFailed, err)
	}

	for _, n := range nodes {
		doc.AppendTo(paragraph, n)
	}
	return nodes, nil
}

// CheckOrder возвращает ошибку для первого диапазона, нарушающего порядок,
// при котором вставка тегов дает корректную вложенность.
func CheckOrder(ranges []document.FormatRange) error {
	for i, f := range ranges {
		if f.From > f.To {
			return fmt.Errorf("format %d (%s): from %d is greater than to %d", i, f.Type, f.From, f.To)
		}
		if i > 0 && f.From < ranges[i-1].To {
			return fmt.Errorf("format %d (%s) starts at %d before format %d (%s) ends at %d",
				i, f.Type, f.From, i-1, ranges[i-1].Type, ranges[i-1].To)
		}
	}
	return nil
}
