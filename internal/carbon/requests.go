package carbon

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/converter"
	"github.com/gofrs/uuid"
)

// ConvertRequest - тело запроса конвертации.
type ConvertRequest struct {
	// Документ Carbon: объект или строка с JSON
	Document json.RawMessage `json:"document" validate:"required,jsonDocument"`
	// HTML-вставки по номеру параграфа
	Inserts map[string]string `json:"inserts,omitempty" validate:"insertIndexes"`
	// Переопределяет CARBON_MINIFY для запроса
	Minify *bool `json:"minify,omitempty"`
}

type ConvertResponse struct {
	ID   uuid.UUID `json:"id"`
	HTML string    `json:"html"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

// DocumentJSON возвращает JSON документа, раскрывая строковую форму.
func (r *ConvertRequest) DocumentJSON() (string, error) {
	raw := strings.TrimSpace(string(r.Document))
	if !strings.HasPrefix(raw, `"`) {
		return raw, nil
	}

	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return "", apierrors.ErrConvertRequestFormat
	}
	return s, nil
}

// CustomInserts разбирает HTML-вставки запроса.
func (r *ConvertRequest) CustomInserts() (converter.CustomInserts, error) {
	if len(r.Inserts) == 0 {
		return nil, nil
	}

	res := make(converter.CustomInserts, len(r.Inserts))
	for key, snippet := range r.Inserts {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 1 {
			return nil, apierrors.ErrInvalidInsert.WithFormattedMessage(key)
		}
		insert, err := converter.InsertHTML(snippet)
		if err != nil {
			return nil, apierrors.ErrInvalidInsert.WithFormattedMessage(key)
		}
		res[idx] = insert
	}
	return res, nil
}
