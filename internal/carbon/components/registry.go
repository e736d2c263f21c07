// Пакет components содержит реестр рендереров компонентов Carbon и встроенные рендереры:
// секции, разметку, параграфы, изображения, списки, встраивания и сырой HTML.
//
// Рендерер получает узел документа, документ-результат и текущего родителя, создает элемент
// узла, добавляет его к родителю (или в корень документа) и возвращает его. Потомков узла
// обходит конвертер, используя возвращенный элемент как нового родителя.
package components

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/document"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
	"golang.org/x/net/html"
)

// Renderer отвечает за один тип компонента.
type Renderer interface {
	Name() string
	Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error)
}

// Registry сопоставляет нормализованное имя компонента с его рендерером.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		r.Register(renderer.Name(), renderer)
	}
	return r
}

// Register добавляет или заменяет рендерер для name.
func (r *Registry) Register(name string, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[Normalize(name)] = renderer
}

func (r *Registry) Resolve(name string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[Normalize(name)]
	return renderer, ok
}

// Snapshot возвращает копию реестра на текущий момент. Регистрации после снимка на него не влияют.
func (r *Registry) Snapshot() map[string]Renderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[string]Renderer, len(r.renderers))
	for k, v := range r.renderers {
		res[k] = v
	}
	return res
}

// Normalize переводит первую букву имени компонента в верхний регистр.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
