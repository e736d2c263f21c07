// Генерация документации об ошибках конвертера и API в формате Markdown.
// Таблица строится по каталогу apierrors: код, HTTP код, вид ошибки и сообщение.
package main

//go:generate go run . -out ../../api_errors.md

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	md "github.com/nao1215/markdown"
)

func main() {
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "out", *outputMd)

	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output file", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := writeDocs(ff, apierrors.Catalog()); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

func writeDocs(w io.Writer, catalog []apierrors.DefinedError) error {
	return md.NewMarkdown(w).
		H1("Перечень кодов ошибок").
		PlainText("Коды 1*** возвращают конвертер и CLI, коды 2*** относятся только к HTTP API.").
		CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Вид", "Сообщение"},
			Rows:   getRows(catalog),
		}, md.TableOptions{
			AutoWrapText: false,
		}).Build()
}

func getRows(catalog []apierrors.DefinedError) [][]string {
	rows := make([][]string, 0, len(catalog))
	for _, e := range catalog {
		rows = append(rows, []string{
			md.Bold(strconv.Itoa(e.Code)),
			fmt.Sprintf("%d %s", e.StatusCode, md.Italic(http.StatusText(e.StatusCode))),
			md.Code(string(e.Kind)),
			md.Code(messageTemplate(e.Err)),
		})
	}
	return rows
}

// messageTemplate заменяет плейсхолдеры формата на читаемое обозначение.
func messageTemplate(msg string) string {
	return strings.ReplaceAll(msg, "%s", "{arg}")
}
