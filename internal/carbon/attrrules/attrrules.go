// Пакет attrrules загружает из YAML правила атрибутов для тегов форматирования
// и превращает их в генераторы атрибутов конвертера.
//
// Пример файла:
//
//	internal_hosts:
//	  - example.com
//	rules:
//	  - type: a
//	    attrs:
//	      rel: nofollow noopener
//	      target: _blank
//	    external: true
package attrrules

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/formats"
	"gopkg.in/yaml.v3"
)

type Rule struct {
	Type  string            `yaml:"type"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
	// External ограничивает правило ссылками на хосты не из InternalHosts.
	External bool `yaml:"external,omitempty"`
}

type Rules struct {
	InternalHosts []string `yaml:"internal_hosts,omitempty"`
	Rules         []Rule   `yaml:"rules,omitempty"`
}

func Load(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse читает правила из r. Пустой ввод дает пустой набор правил.
func Parse(r io.Reader) (*Rules, error) {
	var rules Rules
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode attribute rules: %w", err)
	}

	for i, rule := range rules.Rules {
		if strings.TrimSpace(rule.Type) == "" {
			return nil, fmt.Errorf("attribute rule %d: type is required", i)
		}
	}
	return &rules, nil
}

// Generators группирует правила по типу тега. Правила одного типа применяются по порядку,
// более поздние перекрывают значения более ранних.
func (r *Rules) Generators() formats.AttrGenerators {
	byType := make(map[string][]Rule)
	for _, rule := range r.Rules {
		byType[rule.Type] = append(byType[rule.Type], rule)
	}

	res := make(formats.AttrGenerators, len(byType))
	for t, rules := range byType {
		rules := rules
		res[t] = func(attrs map[string]string, _ string) map[string]string {
			out := make(map[string]string)
			for _, rule := range rules {
				if rule.External && !r.isExternal(attrs["href"]) {
					continue
				}
				for k, v := range rule.Attrs {
					out[k] = v
				}
			}
			return out
		}
	}
	return res
}

// isExternal сообщает, ведет ли ссылка на хост вне InternalHosts. Относительные ссылки внутренние.
func (r *Rules) isExternal(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, internal := range r.InternalHosts {
		internal = strings.ToLower(internal)
		if host == internal || strings.HasSuffix(host, "."+internal) {
			return false
		}
	}
	return true
}
