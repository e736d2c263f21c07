// Определяет политики очистки HTML, которые применяются при конвертации документа.
//
// Основные возможности:
//   - FormatPolicy пропускает только строчные теги форматирования текста параграфа и их безопасные атрибуты.
//   - UgcPolicy применяется к сырому HTML компонента HTMLComponent, если включена его очистка.
//   - Ссылки ограничены схемами mailto, http, https и tel, относительные ссылки разрешены.
package policy

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var FormatPolicy *bluemonday.Policy = bluemonday.NewPolicy()
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

// Строчные теги, которые могут появиться в разметке параграфа.
var inlineElements = []string{
	"a", "abbr", "b", "bdi", "bdo", "br", "cite", "code", "del", "dfn", "em", "i", "ins",
	"kbd", "mark", "q", "s", "samp", "small", "span", "strike", "strong", "sub", "sup",
	"time", "u", "var",
}

func init() {
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgb\((\d+),\s*(\d+),\s*(\d+)\)|inherit)$`)
	decorationRegexp := regexp.MustCompile(`^(none|underline|overline|line-through)$`)
	targetRegexp := regexp.MustCompile(`^(_blank|_self|_parent|_top)$`)
	relRegexp := regexp.MustCompile(`^[a-zA-Z\s-]+$`)

	FormatPolicy.AllowElements(inlineElements...)
	FormatPolicy.AllowStandardAttributes()
	FormatPolicy.AllowDataAttributes()
	FormatPolicy.AllowAttrs("class").Globally()

	FormatPolicy.RequireParseableURLs(true)
	FormatPolicy.AllowRelativeURLs(true)
	FormatPolicy.AllowURLSchemes("mailto", "http", "https", "tel")
	FormatPolicy.AllowAttrs("href").OnElements("a")
	FormatPolicy.AllowAttrs("target").Matching(targetRegexp).OnElements("a")
	FormatPolicy.AllowAttrs("rel").Matching(relRegexp).OnElements("a")
	FormatPolicy.AllowAttrs("cite").OnElements("q", "del", "ins")
	FormatPolicy.AllowAttrs("datetime").OnElements("time", "del", "ins")
	// ссылка, у которой отброшен href, остается тегом
	FormatPolicy.AllowNoAttrs().OnElements("a")

	FormatPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).OnElements("span", "mark")
	FormatPolicy.AllowStyles("text-decoration").Matching(decorationRegexp).OnElements("span")

	UgcPolicy.AllowAttrs("class").Globally()
	UgcPolicy.AllowDataAttributes()
	UgcPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).Globally()
	UgcPolicy.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()
}
