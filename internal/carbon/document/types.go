// Пакет document предоставляет типы документа редактора Carbon и разбор его JSON-представления.
// Документ - это дерево компонентов (секции, разметка, параграфы, изображения, списки, встраивания),
// корнем которого всегда является массив sections.
package document

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Document представляет корневой объект документа Carbon.
type Document struct {
	Sections []Node `json:"sections"`
}

// Node представляет компонент в дереве документа.
// Поля, не известные парсеру (src, caption, tagName, url, html и т.д.), попадают в Attrs
// и читаются рендерерами конкретных компонентов.
type Node struct {
	Component     string        `json:"component"`
	ParagraphType string        `json:"paragraphType,omitempty"`
	Text          string        `json:"text,omitempty"`
	Formats       []FormatRange `json:"formats,omitempty"`
	Components    []Node        `json:"components,omitempty"`

	Attrs map[string]any `json:"-"`
}

// FormatRange представляет форматирование участка текста (b, i, a и т.д.).
// From и To - смещения в кодовых точках внутри Node.Text.
type FormatRange struct {
	Type  string `json:"type"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

// Attrs - атрибуты тега форматирования. Скалярные значения JSON приводятся к строкам.
type Attrs map[string]string

var knownNodeFields = []string{"component", "paragraphType", "text", "formats", "components"}

// TextLen возвращает длину текста узла в кодовых точках.
func (n *Node) TextLen() int {
	return utf8.RuneCountInString(n.Text)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	type nodeAlias Node
	var alias nodeAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownNodeFields {
		delete(raw, key)
	}

	*n = Node(alias)
	if len(raw) > 0 {
		n.Attrs = raw
	}
	return nil
}

func (a *Attrs) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*a = nil
		return nil
	}

	res := make(Attrs, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			res[k] = val
		case float64:
			res[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			res[k] = strconv.FormatBool(val)
		default:
			return fmt.Errorf("format attribute %q: unsupported value %T", k, v)
		}
	}
	*a = res
	return nil
}
