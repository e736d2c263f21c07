package converter

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/document"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/dom"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/formats"
	stack_error "github.com/candybanana/carbon-json-to-html/internal/carbon/stack-error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func paragraph(text string) string {
	return fmt.Sprintf(`{"component":"Paragraph","paragraphType":"p","text":%q}`, text)
}

func section(children ...string) string {
	return `{"component":"Section","components":[` + strings.Join(children, ",") + `]}`
}

func sections(children ...string) string {
	return `{"sections":[` + strings.Join(children, ",") + `]}`
}

func query(t *testing.T, out string) *goquery.Document {
	t.Helper()
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return gq
}

func TestConvert(t *testing.T) {
	c := New()

	out, err := c.Convert(sections(section(
		paragraph("Hello, world"),
		`{"component":"Paragraph","paragraphType":"h2","text":"Title"}`,
	)), nil)
	require.NoError(t, err)
	assert.Equal(t, "<section><p>Hello, world</p><h2>Title</h2></section>", out)
}

func TestConvertNestedLayout(t *testing.T) {
	data := sections(section(
		`{"component":"Layout","type":"layout-single-column","components":[`+
			paragraph("one")+`,`+
			`{"component":"ListComponent","tagName":"ul","components":[`+
			`{"component":"Paragraph","paragraphType":"li","text":"item"}]}]}`,
	))

	out, err := New().Convert(data, nil)
	require.NoError(t, err)
	assert.Equal(t, `<section><div class="layout-single-column"><p>one</p><ul><li>item</li></ul></div></section>`, out)
}

func TestConvertRootLevelNodes(t *testing.T) {
	out, err := New().Convert(sections(section(paragraph("a")), section(paragraph("b"))), nil)
	require.NoError(t, err)
	assert.Equal(t, "<section><p>a</p></section><section><p>b</p></section>", out)

	out, err = New().Convert(`{"sections":[]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		wantErr  error
		wantKind apierrors.Kind
		contains string
	}{
		{
			name:     "missing sections",
			json:     `{}`,
			wantErr:  apierrors.ErrNotCarbonFormat,
			wantKind: apierrors.KindStructure,
		},
		{
			name:     "not json",
			json:     `not json`,
			wantErr:  apierrors.ErrInvalidJSON,
			wantKind: apierrors.KindParse,
		},
		{
			name:     "unknown component",
			json:     sections(`{"component":"Bogus","text":"x"}`),
			wantErr:  apierrors.ErrUnknownComponent,
			wantKind: apierrors.KindStructure,
			contains: "Bogus",
		},
		{
			name:     "nested unknown component",
			json:     sections(section(paragraph("ok"), `{"component":"bogus"}`)),
			wantErr:  apierrors.ErrUnknownComponent,
			wantKind: apierrors.KindStructure,
			contains: "Bogus",
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Convert(tt.json, nil)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, apierrors.KindOf(err))
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestConvertErrorContext(t *testing.T) {
	_, err := New().Convert(sections(section(paragraph("ok"), `{"component":"bogus"}`)), nil)
	require.Error(t, err)

	var te *stack_error.TrackerError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "/0/1", te.Context["path"])
	assert.Equal(t, "Bogus", te.Context["component"])
	assert.Len(t, te.ErrStack, 2)
}

func TestConvertDocumentNil(t *testing.T) {
	_, err := New().ConvertDocument(nil, nil)
	assert.ErrorIs(t, err, apierrors.ErrNotCarbonFormat)

	_, err = New().ConvertDocument(&document.Document{}, nil)
	assert.ErrorIs(t, err, apierrors.ErrNotCarbonFormat)
}

func TestCustomInserts(t *testing.T) {
	long := strings.Repeat("a", 150)
	short := strings.Repeat("b", 10)
	hundred := strings.Repeat("c", 100)
	thirty := strings.Repeat("d", 30)

	aside := func() InsertCallback { return InsertWrapper("aside") }

	tests := []struct {
		name    string
		json    string
		inserts CustomInserts
		want    string
	}{
		{
			name:    "long paragraph gets insert before it",
			json:    sections(section(paragraph(long))),
			inserts: CustomInserts{1: aside()},
			want:    "<section><aside><p>" + long + "</p></aside></section>",
		},
		{
			name:    "short paragraph skipped",
			json:    sections(section(paragraph(short))),
			inserts: CustomInserts{1: aside()},
			want:    "<section><p>" + short + "</p></section>",
		},
		{
			name:    "first insert uses cumulative length",
			json:    sections(section(paragraph(hundred), paragraph(thirty))),
			inserts: CustomInserts{2: aside()},
			want:    "<section><p>" + hundred + "</p><aside><p>" + thirty + "</p></aside></section>",
		},
		{
			name:    "later insert needs long paragraph",
			json:    sections(section(paragraph(hundred), paragraph(thirty))),
			inserts: CustomInserts{1: aside(), 2: aside()},
			want:    "<section><p>" + hundred + "</p><p>" + thirty + "</p></section>",
		},
		{
			name:    "new parent kept for following siblings",
			json:    sections(section(paragraph(long), paragraph(short))),
			inserts: CustomInserts{1: aside()},
			want:    "<section><aside><p>" + long + "</p><p>" + short + "</p></aside></section>",
		},
		{
			name: "only plain paragraphs are counted",
			json: sections(section(
				`{"component":"Paragraph","paragraphType":"h2","text":"`+long+`"}`,
				paragraph(long),
			)),
			inserts: CustomInserts{1: aside()},
			want:    "<section><h2>" + long + "</h2><aside><p>" + long + "</p></aside></section>",
		},
		{
			name:    "counter continues across sections",
			json:    sections(section(paragraph(short)), section(paragraph(long))),
			inserts: CustomInserts{2: aside()},
			want:    "<section><p>" + short + "</p></section><section><aside><p>" + long + "</p></aside></section>",
		},
		{
			name: "nested text not counted for siblings",
			json: sections(section(
				`{"component":"Layout","components":[`+paragraph(hundred)+`]}`,
				paragraph(thirty),
			)),
			inserts: CustomInserts{2: aside()},
			want:    `<section><div class="layout-single-column"><p>` + hundred + `</p></div><p>` + thirty + `</p></section>`,
		},
		{
			name:    "insert at root level",
			json:    sections(paragraph(long)),
			inserts: CustomInserts{1: aside()},
			want:    "<aside><p>" + long + "</p></aside>",
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Convert(tt.json, tt.inserts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestInsertCallbackArguments(t *testing.T) {
	var gotParent *html.Node
	calls := 0
	inserts := CustomInserts{
		1: func(doc *dom.Document, parent *html.Node) *html.Node {
			calls++
			gotParent = parent
			return parent
		},
	}

	_, err := New().Convert(sections(section(paragraph(strings.Repeat("x", 121)))), inserts)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.NotNil(t, gotParent)
	assert.Equal(t, "section", gotParent.Data)
}

func TestInsertHTML(t *testing.T) {
	insert, err := InsertHTML(`<div class="ad">AD</div>`)
	require.NoError(t, err)

	long := strings.Repeat("a", 130)
	data := sections(section(paragraph(long)), section(paragraph(long)))
	out, err := New().Convert(data, CustomInserts{1: insert, 2: insert})
	require.NoError(t, err)

	gq := query(t, out)
	assert.Equal(t, 2, gq.Find("section > div.ad").Length())
	assert.Equal(t, 2, gq.Find("section > div.ad + p").Length())
}

func TestCustomAttrs(t *testing.T) {
	c := New(WithCustomAttrs(formats.AttrGenerators{
		"a": func(attrs map[string]string, text string) map[string]string {
			return map[string]string{"rel": "nofollow"}
		},
	}))

	data := sections(`{"component":"Paragraph","paragraphType":"p","text":"go here","formats":[{"type":"a","from":3,"to":7,"attrs":{"href":"https://example.com","rel":"me"}}]}`)
	out, err := c.Convert(data, nil)
	require.NoError(t, err)
	assert.Equal(t, `<p>go <a href="https://example.com" rel="nofollow">here</a></p>`, out)
}

type calloutRenderer struct{}

func (calloutRenderer) Name() string { return "Callout" }

func (calloutRenderer) Parse(node *document.Node, doc *dom.Document, parent *html.Node) (*html.Node, error) {
	return doc.AppendElement(parent, "aside", dom.Attr("class", "callout-"+node.AttrString("tone"))), nil
}

func TestAddComponent(t *testing.T) {
	data := sections(`{"component":"callout","tone":"warn","components":[` + paragraph("careful") + `]}`)

	_, err := New().Convert(data, nil)
	assert.ErrorIs(t, err, apierrors.ErrUnknownComponent)

	out, err := New().AddComponent("Callout", calloutRenderer{}).Convert(data, nil)
	require.NoError(t, err)
	assert.Equal(t, `<aside class="callout-warn"><p>careful</p></aside>`, out)

	out, err = New(WithComponent(calloutRenderer{})).Convert(data, nil)
	require.NoError(t, err)
	assert.Equal(t, `<aside class="callout-warn"><p>careful</p></aside>`, out)
}

type failingSanitizer struct{}

func (failingSanitizer) SanitizeReaderToWriter(io.Reader, io.Writer) error {
	return errors.New("boom")
}

func TestSanitizeFailureAborts(t *testing.T) {
	out, err := New(WithFormatSanitizer(failingSanitizer{})).Convert(sections(section(paragraph("x"))), nil)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, apierrors.ErrSanitizeFailed)
	assert.Equal(t, apierrors.KindSanitize, apierrors.KindOf(err))
}

func TestConvertDeterministic(t *testing.T) {
	data := sections(section(
		paragraph(strings.Repeat("z", 130)),
		`{"component":"Paragraph","paragraphType":"p","text":"Привет мир 👋","formats":[{"type":"b","from":0,"to":6},{"type":"i","from":11,"to":12}]}`,
	))
	newInserts := func() CustomInserts { return CustomInserts{1: InsertWrapper("aside")} }

	c := New()
	first, err := c.Convert(data, newInserts())
	require.NoError(t, err)
	second, err := c.Convert(data, newInserts())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "<b>Привет</b> мир <i>👋</i>")
}

func TestConvertConcurrent(t *testing.T) {
	c := New()
	data := sections(section(paragraph(strings.Repeat("q", 200)), paragraph("tail")))
	want, err := c.Convert(data, CustomInserts{1: InsertWrapper("aside")})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Convert(data, CustomInserts{1: InsertWrapper("aside")})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestMinify(t *testing.T) {
	out, err := Minify("<section>\n  <p>Hello   world</p>\n</section>")
	require.NoError(t, err)
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "<p>Hello world</p>")
	assert.Contains(t, out, "</section>")
}
