package schemabind

// Codec performs bidirectional transformation between the wire representation
// A (as it appears in a Document Value) and the domain representation B.
type Codec[A, B any] interface {
	Decode(a A) (B, error) // A (wire) -> B (domain).
	Encode(b B) (A, error) // B (domain) -> A (wire).
}

// DecodeAll decodes every element of as in order. It stops at the first
// failure and reports it with the element index in the issue path.
func DecodeAll[A, B any](c Codec[A, B], as []A) ([]B, error) {
	out := make([]B, 0, len(as))
	for i, a := range as {
		b, err := c.Decode(a)
		if err != nil {
			return nil, prefixIndex(err, i)
		}
		out = append(out, b)
	}
	return out, nil
}

// EncodeAll encodes every element of bs in order.
func EncodeAll[A, B any](c Codec[A, B], bs []B) ([]A, error) {
	out := make([]A, 0, len(bs))
	for i, b := range bs {
		a, err := c.Encode(b)
		if err != nil {
			return nil, prefixIndex(err, i)
		}
		out = append(out, a)
	}
	return out, nil
}

func prefixIndex(err error, i int) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for k, it := range iss {
		p := Root().Index(i).Pointer()
		if it.Path != "" && it.Path != "/" {
			p += it.Path
		}
		it.Path = p
		out[k] = it
	}
	return out
}
