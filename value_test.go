package yawn

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	gyaml "github.com/goccy/go-yaml"
)

type port int

func TestFromAny(t *testing.T) {
	tcs := map[string]struct {
		in   any
		want Value
	}{
		"nil":          {in: nil, want: Null()},
		"bool":         {in: true, want: Bool(true)},
		"int":          {in: 42, want: Int(42)},
		"uint8":        {in: uint8(7), want: Int(7)},
		"large uint":   {in: uint64(math.MaxUint64), want: Float(float64(uint64(math.MaxUint64)))},
		"float":        {in: 1.5, want: Float(1.5)},
		"json number":  {in: json.Number("12"), want: Int(12)},
		"json float":   {in: json.Number("1e3"), want: Float(1000)},
		"string":       {in: "x", want: String("x")},
		"named scalar": {in: port(8080), want: Int(8080)},
		"typed slice":  {in: []string{"a", "b"}, want: Array(String("a"), String("b"))},
		"nil slice":    {in: []string(nil), want: Null()},
		"plain map":    {in: map[string]any{"b": 1, "a": 2}, want: Map(Entry{"a", Int(2)}, Entry{"b", Int(1)})},
		"typed map":    {in: map[string]int{"z": 1}, want: Map(Entry{"z", Int(1)})},
		"map slice":    {in: ms("b", 1, "a", []any{nil}), want: Map(Entry{"b", Int(1)}, Entry{"a", Array(Null())})},
		"text marshal": {in: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), want: String("2024-01-02T00:00:00Z")},
		"value as is":  {in: Float(math.NaN()), want: Float(math.NaN())},
		"non-str key":  {in: gyaml.MapSlice{{Key: 1, Value: "one"}}, want: Map(Entry{"1", String("one")})},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			if err != nil {
				t.Fatalf("FromAny: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFromAnyUnknownType(t *testing.T) {
	for _, in := range []any{
		func() {},
		make(chan int),
		map[int]string{1: "a"},
		[]any{1, struct{}{}},
	} {
		if _, err := FromAny(in); !errors.Is(err, ErrUnknownType) {
			t.Fatalf("FromAny(%T): want ErrUnknownType, got %v", in, err)
		}
	}
}

func TestEqual(t *testing.T) {
	tcs := []struct {
		a, b Value
		want bool
	}{
		{Int(1), Float(1), true},
		{Float(math.NaN()), Float(math.NaN()), true},
		{Int(1), String("1"), false},
		{Null(), Value{}, false},
		{Value{}, Value{}, true},
		{Array(Int(1), Int(2)), Array(Int(2), Int(1)), false},
		{Map(Entry{"a", Int(1)}, Entry{"b", Int(2)}), Map(Entry{"b", Int(2)}, Entry{"a", Int(1)}), true},
		{Map(Entry{"a", Int(1)}), Map(Entry{"a", Int(1)}, Entry{"b", Null()}), false},
		{Map(Entry{"a", Array()}), Map(Entry{"a", Map()}), false},
	}
	for i, tc := range tcs {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("case %d: %s.Equal(%s) = %v, want %v", i, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMapKeepsFirstPositionLastValue(t *testing.T) {
	m := Map(Entry{"a", Int(1)}, Entry{"b", Int(2)}, Entry{"a", Int(3)})
	if keys := m.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if v, _ := m.Get("a"); v.Int() != 3 {
		t.Fatalf("want a=3, got %s", v)
	}
}

func TestValueHelpersCopy(t *testing.T) {
	m := Map(Entry{"a", Int(1)})
	m2 := m.With("a", Int(2)).With("b", Bool(true))
	if v, _ := m.Get("a"); v.Int() != 1 {
		t.Fatalf("With mutated the receiver: %s", m)
	}
	if got := m2.String(); got != `{"a":2,"b":true}` {
		t.Fatalf("unexpected %s", got)
	}
	if got := m2.Without("a").String(); got != `{"b":true}` {
		t.Fatalf("unexpected %s", got)
	}

	arr := Array(Int(1))
	arr2 := arr.Append(Int(2))
	if arr.Len() != 1 || arr2.Len() != 2 || arr2.Index(1).Int() != 2 {
		t.Fatalf("Append: %s %s", arr, arr2)
	}
}

func TestMarshalJSON(t *testing.T) {
	v := Map(
		Entry{"z", Array(Int(1), Float(2.5), Null())},
		Entry{"a", String("q\"uote")},
	)
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if got, want := string(b), `{"z":[1,2.5,null],"a":"q\"uote"}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
	if _, err := Float(math.Inf(1)).MarshalJSON(); err == nil {
		t.Fatalf("expected error for +Inf")
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte(`{"b": 1, "a": [true, -2, 1.5, "s", null]}`))
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if got, want := v.String(), `{"b":1,"a":[true,-2,1.5,"s",null]}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}

	v, err = ParseValue([]byte("  \n"))
	if err != nil || !v.IsNull() {
		t.Fatalf("blank input should be null, got %s (%v)", v, err)
	}
	if _, err := ParseValue([]byte("a: [")); err == nil {
		t.Fatalf("expected decode error")
	}
}
