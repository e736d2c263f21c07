package converter

import (
	"fmt"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var minifier *minify.M = minify.New()

func init() {
	minifier.Add("text/html", &html.Minifier{
		KeepEndTags:      true,
		KeepQuotes:       true,
		KeepDocumentTags: true,
	})
}

// Minify сжимает HTML результата конвертации.
func Minify(s string) (string, error) {
	out, err := minifier.String("text/html", s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apierrors.ErrMinifyFailed, err)
	}
	return out, nil
}
