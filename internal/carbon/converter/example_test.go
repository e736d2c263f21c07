package converter_test

import (
	"fmt"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/converter"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
)

func ExampleConverter_Convert() {
	c := converter.New()

	out, err := c.Convert(`{"sections":[{"component":"section","components":[
		{"component":"paragraph","paragraphType":"p","text":"Hello, world","formats":[{"type":"b","from":7,"to":12}]}
	]}]}`, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out)
	// Output: <section><p>Hello, <b>world</b></p></section>
}

func ExampleInsertWrapper() {
	c := converter.New()
	text := strings.Repeat("a", 121)

	out, _ := c.Convert(`{"sections":[{"component":"Paragraph","paragraphType":"p","text":"`+text+`"}]}`,
		converter.CustomInserts{1: converter.InsertWrapper("article", dom.Attr("class", "promo"))})
	fmt.Println(strings.Replace(out, text, "...", 1))
	// Output: <article class="promo"><p>...</p></article>
}
