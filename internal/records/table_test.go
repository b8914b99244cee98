package records

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildCollection(t *testing.T, rows map[string]map[string]string, order ...string) *Collection {
	t.Helper()
	coll := NewCollection()
	for _, id := range order {
		fields := NewFields()
		for name, value := range rows[id] {
			fields.Set(name, String(value))
		}
		coll.Put(&Record{ID: id, CreatedTime: "2024-01-01T00:00:00Z", Fields: fields})
	}
	return coll
}

func TestToCSVHeaderAndSparseCells(t *testing.T) {
	coll := buildCollection(t, map[string]map[string]string{
		"rec1": {"name": "Acme Inc.", "notes": "a\nb"},
		"rec2": {"city": "Oslo, Norway"},
	}, "rec1", "rec2")

	got := ToCSV(coll)
	want := strings.Join([]string{
		"id,createdTime,city,name,notes",
		"rec1,2024-01-01T00:00:00Z,,Acme Inc.,a | b",
		`rec2,2024-01-01T00:00:00Z,"Oslo, Norway",,`,
	}, "\n") + "\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestToCSVStringifiesNonStrings(t *testing.T) {
	fields := NewFields()
	fields.Set("n", Number("42"))
	fields.Set("ok", Bool(false))
	fields.Set("none", Null())
	inner := NewFields()
	inner.Set("k", String("v"))
	fields.Set("obj", Map(inner))
	coll := NewCollection()
	coll.Put(&Record{ID: "r", Fields: fields})

	got := ToCSV(coll)
	want := "id,createdTime,n,none,obj,ok\n" + `r,,42,,"{""k"":""v""}",false` + "\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCSVRoundTripScalarRecords(t *testing.T) {
	original := buildCollection(t, map[string]map[string]string{
		"rec1": {"name": "Acme Inc.", "quote": `She said "hi"`},
		"rec2": {"name": "Widgets, and Gadgets"},
		"rec3": {"blank": "  padded  ", " note": "leading space in name"},
		"rec4": {"tags": "[1,2]", "meta": "{}", "list": `["a","b"]`},
	}, "rec1", "rec2", "rec3", "rec4")

	back, stats, err := FromCSV(ToCSV(original), CSVOptions{})
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if stats.Records != 4 {
		t.Fatalf("records = %d, want 4", stats.Records)
	}
	if !original.Equal(back) {
		t.Fatalf("round trip changed records:\nwant %s\ngot  %s", ToCSV(original), ToCSV(back))
	}
}

func TestCSVFixedPoint(t *testing.T) {
	input := "id,createdTime,b,a\n" +
		"r1,t1,x,\n" +
		"r2,t2,\"y, z\",line one | line two\n"
	first, _, err := FromCSV(input, CSVOptions{})
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	once := ToCSV(first)
	second, _, err := FromCSV(once, CSVOptions{})
	if err != nil {
		t.Fatalf("FromCSV second pass: %v", err)
	}
	if twice := ToCSV(second); twice != once {
		t.Fatalf("not a fixed point:\n%s\nvs\n%s", once, twice)
	}
	rec, _ := first.Get("r2")
	if v, _ := rec.Fields.Get("a"); v.Text() != "line one\nline two" {
		t.Fatalf("newline marker not restored: %q", v.Text())
	}
	r1, _ := first.Get("r1")
	if _, ok := r1.Fields.Get("a"); ok {
		t.Fatal("empty cell should be omitted")
	}
}

func TestFromCSVKeepsJSONLookingCellsAsStrings(t *testing.T) {
	input := "id,tags,meta\n" + `r1,"[""a"",""b""]",{}` + "\n"
	coll, _, err := FromCSV(input, CSVOptions{})
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	rec, _ := coll.Get("r1")
	for name, want := range map[string]string{"tags": `["a","b"]`, "meta": "{}"} {
		v, _ := rec.Fields.Get(name)
		if s, ok := v.Str(); !ok || s != want {
			t.Fatalf("%s = %s %q, want string %q", name, v.Kind(), v.Text(), want)
		}
	}
}

func TestFromCSVDecodeStructuredCells(t *testing.T) {
	input := "id,tags,meta,bracket\n" +
		`r1,"[""a"",""b""]","{""k"":1}",[not json` + "\n"
	coll, _, err := FromCSV(input, CSVOptions{DecodeStructured: true})
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	rec, _ := coll.Get("r1")
	tags, _ := rec.Fields.Get("tags")
	if tags.Kind() != KindList || len(tags.Items()) != 2 {
		t.Fatalf("tags = %s %q, want two item list", tags.Kind(), tags.Text())
	}
	meta, _ := rec.Fields.Get("meta")
	if meta.Kind() != KindMap {
		t.Fatalf("meta kind = %s, want map", meta.Kind())
	}
	bracket, _ := rec.Fields.Get("bracket")
	if s, ok := bracket.Str(); !ok || s != "[not json" {
		t.Fatalf("bracket = %q, want plain string", bracket.Text())
	}
}

func TestFromCSVRowHandling(t *testing.T) {
	input := "name, id ,id\n" +
		"first,r1,ignored\n" +
		"nobody,,x\n" +
		"second,r1\n" +
		"third,r2,extra,more\n"
	coll, stats, err := FromCSV(input, CSVOptions{})
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	want := Stats{Records: 2, Skipped: 1, Duplicates: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
	rec, _ := coll.Get("r1")
	if v, _ := rec.Fields.Get("name"); v.Text() != "second" {
		t.Fatalf("later duplicate should win, got %q", v.Text())
	}
	if diff := cmp.Diff([]string{"r1", "r2"}, coll.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFromCSVColumnOverride(t *testing.T) {
	opts := CSVOptions{Columns: []string{"id", "label"}, NoHeader: true}
	coll, _, err := FromCSV("r1,one\nr2,two\n", opts)
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if coll.Len() != 2 {
		t.Fatalf("len = %d, want 2", coll.Len())
	}

	opts.NoHeader = false
	coll, _, err = FromCSV("ignored,header\nr1,one\n", opts)
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"r1"}, coll.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFromCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty document", input: "\n\r\n", want: ErrNoRecords},
		{name: "header only", input: "id,name\n", want: ErrNoRecords},
		{name: "all ids empty", input: "id,name\n,x\n", want: ErrNoRecords},
		{name: "missing id column", input: "name,city\nAcme,Oslo\n", want: ErrMissingIDColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromCSV(tt.input, CSVOptions{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFieldSetExcludesReservedNames(t *testing.T) {
	fields := NewFields()
	fields.Set("id", String("shadow"))
	fields.Set("createdTime", String("shadow"))
	fields.Set("b", String("1"))
	fields.Set("a", String("2"))
	coll := NewCollection()
	coll.Put(&Record{ID: "r", Fields: fields})
	if diff := cmp.Diff([]string{"a", "b"}, coll.FieldSet()); diff != "" {
		t.Fatalf("field set mismatch (-want +got):\n%s", diff)
	}
}
