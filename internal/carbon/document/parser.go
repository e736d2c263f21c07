package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
)

// ParseJSON парсит JSON документа Carbon в структуру Document.
// Невалидный JSON возвращает apierrors.ErrInvalidJSON, отсутствие массива sections или узлы
// неверной формы - apierrors.ErrNotCarbonFormat.
func ParseJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// JSON валиден, но корень не объект
			return nil, fmt.Errorf("%w: %w", apierrors.ErrNotCarbonFormat, err)
		}
		return nil, fmt.Errorf("%w: %w", apierrors.ErrInvalidJSON, err)
	}

	// null считается отсутствием
	raw, ok := root["sections"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, apierrors.ErrNotCarbonFormat
	}

	var sections []Node
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("%w: %w", apierrors.ErrNotCarbonFormat, err)
	}
	if sections == nil {
		sections = make([]Node, 0)
	}

	return &Document{Sections: sections}, nil
}

// ParseString - обертка над ParseJSON для строкового ввода.
func ParseString(s string) (*Document, error) {
	return ParseJSON(strings.NewReader(s))
}
