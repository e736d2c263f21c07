package document

import "strconv"

// AttrString безопасно извлекает строковое поле компонента.
func (n *Node) AttrString(key string) string {
	if n.Attrs == nil {
		return ""
	}
	val, ok := n.Attrs[key]
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// AttrInt безопасно извлекает целочисленное поле компонента.
func (n *Node) AttrInt(key string) int {
	if n.Attrs == nil {
		return 0
	}
	val, ok := n.Attrs[key]
	if !ok {
		return 0
	}

	// Из JSON приходит float64
	if f, ok := val.(float64); ok {
		return int(f)
	}

	if i, ok := val.(int); ok {
		return i
	}

	// "640" в старых документах
	if s, ok := val.(string); ok {
		i, err := strconv.Atoi(s)
		if err == nil {
			return i
		}
	}

	return 0
}

// AttrBool безопасно извлекает булево поле компонента.
func (n *Node) AttrBool(key string) bool {
	if n.Attrs == nil {
		return false
	}
	val, ok := n.Attrs[key]
	if !ok {
		return false
	}
	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}
