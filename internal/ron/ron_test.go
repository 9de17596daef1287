package ron

import (
	"errors"
	"strings"
	"testing"
)

func TestParseNamedStruct(t *testing.T) {
	src := `
// session header
SessionData(
    game_name: "default",
    planet_dim: (row: 100, col: 200), /* rows, cols */
    seed: 42,
    gravity: -9.81,
    saved_chunks: [3, 7],
    verbose: false,
)`
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Kind != KindStruct || v.Name != "SessionData" {
		t.Fatalf("got %s %q, want struct SessionData", v.Kind, v.Name)
	}
	name, err := mustField(t, v, "game_name").AsString()
	if err != nil || name != "default" {
		t.Fatalf("game_name = %q, %v", name, err)
	}
	rows, err := mustField(t, mustField(t, v, "planet_dim"), "row").AsUint()
	if err != nil || rows != 100 {
		t.Fatalf("planet_dim.row = %d, %v", rows, err)
	}
	g, err := mustField(t, v, "gravity").AsFloat()
	if err != nil || g != -9.81 {
		t.Fatalf("gravity = %v, %v", g, err)
	}
	saved := mustField(t, v, "saved_chunks")
	if saved.Kind != KindList || len(saved.Items) != 2 {
		t.Fatalf("saved_chunks = %+v", saved)
	}
	if b := mustField(t, v, "verbose"); b.Kind != KindBool || b.Bool {
		t.Fatalf("verbose = %+v", b)
	}
}

func TestParseMapWithStructKeys(t *testing.T) {
	v, err := Parse([]byte(`{(row:0,col:1):Dirt,(row:2,col:3):Gold}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Kind != KindMap || len(v.Entries) != 2 {
		t.Fatalf("got %+v", v)
	}
	e := v.Entries[1]
	col, _ := mustField(t, e.Key, "col").AsUint()
	typ, _ := e.Value.AsIdent()
	if col != 3 || typ != "Gold" {
		t.Fatalf("entry 1 = col %d type %q", col, typ)
	}
}

func TestParseTupleAndEnumVariant(t *testing.T) {
	v, err := Parse([]byte(`Some((1, "two", Three))`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Kind != KindTuple || v.Name != "Some" || len(v.Items) != 1 {
		t.Fatalf("got %+v", v)
	}
	inner := v.Items[0]
	if inner.Kind != KindTuple || len(inner.Items) != 3 {
		t.Fatalf("inner = %+v", inner)
	}
	if inner.Items[2].Kind != KindIdent || inner.Items[2].Name != "Three" {
		t.Fatalf("third item = %+v", inner.Items[2])
	}
}

func TestParseStringEscapes(t *testing.T) {
	v, err := Parse([]byte(`"a\"b\\c\n\u{41}"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Text != "a\"b\\c\nA" {
		t.Fatalf("got %q", v.Text)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		``,
		`(row: 1`,
		`{(row:0,col:0) Dirt}`,
		`"unterminated`,
		`[1, 2,, 3]`,
		`(a: 1, 2)`,
	}
	for _, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", src)
		}
	}

	_, err := Parse([]byte(`1 2`))
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("Parse(\"1 2\") = %v, want ErrTrailingData", err)
	}
	var se *SyntaxError
	if !errors.As(err, &se) || se.Line != 1 {
		t.Fatalf("want SyntaxError on line 1, got %v", err)
	}
}

func TestMarshalCompact(t *testing.T) {
	v := Map(
		Entry{Key: Struct("", F("row", Uint(0)), F("col", Uint(1))), Value: Ident("Dirt")},
		Entry{Key: Struct("", F("row", Uint(1)), F("col", Uint(0))), Value: Ident("Rock")},
	)
	got := string(Marshal(v, false))
	want := `{(row:0,col:1):Dirt,(row:1,col:0):Rock}`
	if got != want {
		t.Fatalf("Marshal = %s, want %s", got, want)
	}
}

func TestMarshalPrettyPutsEntriesOnLines(t *testing.T) {
	v := Struct("SessionData",
		F("game_name", String("my \"game\"")),
		F("tile_size", Struct("", F("width", Float(16)), F("height", Float(16)))),
		F("saved_chunks", List(Uint(4), Uint(9))),
	)
	out := string(Marshal(v, true))
	for _, line := range []string{
		`    game_name: "my \"game\"",`,
		`    tile_size: (width: 16.0, height: 16.0),`,
		`        4,`,
	} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output missing line %q:\n%s", line, out)
		}
	}

	back, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse(Marshal): %v\n%s", err, out)
	}
	w, _ := mustField(t, mustField(t, back, "tile_size"), "width").AsFloat()
	if w != 16 {
		t.Fatalf("tile_size.width = %v", w)
	}
	name, _ := mustField(t, back, "game_name").AsString()
	if name != `my "game"` {
		t.Fatalf("game_name = %q", name)
	}
}

func mustField(t *testing.T, v Value, name string) Value {
	t.Helper()
	f, err := v.Field(name)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return f
}
