package ron

import (
	"strconv"
	"strings"
)

// Marshal renders v. With pretty set, every struct field, list item and map
// entry goes on its own indented line; scalars and tuples stay inline.
func Marshal(v Value, pretty bool) []byte {
	w := &writer{pretty: pretty}
	w.value(v, 0)
	if pretty {
		w.b.WriteByte('\n')
	}
	return []byte(w.b.String())
}

type writer struct {
	b      strings.Builder
	pretty bool
}

func (w *writer) newline(depth int) {
	if !w.pretty {
		return
	}
	w.b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		w.b.WriteString("    ")
	}
}

func (w *writer) value(v Value, depth int) {
	switch v.Kind {
	case KindIdent:
		w.b.WriteString(v.Name)
	case KindString:
		w.b.WriteString(quote(v.Text))
	case KindNumber:
		w.b.WriteString(v.Text)
	case KindBool:
		w.b.WriteString(strconv.FormatBool(v.Bool))
	case KindStruct:
		w.b.WriteString(v.Name)
		w.b.WriteByte('(')
		for i, f := range v.Fields {
			if i > 0 && !w.pretty {
				w.b.WriteByte(',')
			}
			if w.pretty && !inline(v) {
				w.newline(depth + 1)
			}
			w.b.WriteString(f.Name)
			w.b.WriteByte(':')
			if w.pretty {
				w.b.WriteByte(' ')
			}
			w.value(f.Value, depth+1)
			if w.pretty {
				if inline(v) {
					if i < len(v.Fields)-1 {
						w.b.WriteString(", ")
					}
				} else {
					w.b.WriteByte(',')
				}
			}
		}
		if w.pretty && !inline(v) && len(v.Fields) > 0 {
			w.newline(depth)
		}
		w.b.WriteByte(')')
	case KindTuple:
		w.b.WriteString(v.Name)
		w.b.WriteByte('(')
		for i, it := range v.Items {
			if i > 0 {
				w.b.WriteByte(',')
				if w.pretty {
					w.b.WriteByte(' ')
				}
			}
			w.value(it, depth)
		}
		w.b.WriteByte(')')
	case KindList:
		w.b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 && !w.pretty {
				w.b.WriteByte(',')
			}
			w.newline(depth + 1)
			w.value(it, depth+1)
			if w.pretty {
				w.b.WriteByte(',')
			}
		}
		if len(v.Items) > 0 {
			w.newline(depth)
		}
		w.b.WriteByte(']')
	case KindMap:
		w.b.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 && !w.pretty {
				w.b.WriteByte(',')
			}
			w.newline(depth + 1)
			w.value(e.Key, depth+1)
			w.b.WriteByte(':')
			if w.pretty {
				w.b.WriteByte(' ')
			}
			w.value(e.Value, depth+1)
			if w.pretty {
				w.b.WriteByte(',')
			}
		}
		if len(v.Entries) > 0 {
			w.newline(depth)
		}
		w.b.WriteByte('}')
	}
}

// inline keeps small all-scalar structs such as (row: 1, col: 2) on one line.
func inline(v Value) bool {
	if len(v.Fields) > 3 {
		return false
	}
	for _, f := range v.Fields {
		switch f.Value.Kind {
		case KindStruct, KindList, KindMap:
			return false
		}
	}
	return true
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 {
				b.WriteString(`\u{` + strconv.FormatInt(int64(r), 16) + `}`)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
