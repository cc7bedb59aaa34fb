package fields

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))
	return obj
}

var (
	roomIDAliases = []string{"room_id", "id", "room.room_id", "room.id"}
	pointAliases  = []string{"point", "event_point", "popularity_point", "total_point", "event_entry.event_point"}
	rankAliases   = []string{"rank", "position", "event_entry.rank"}
)

func TestLookup_Nested(t *testing.T) {
	obj := decode(t, `{"room":{"room_id":77},"event_entry":{"rank":null}}`)

	v, ok := Lookup(obj, "room.room_id")
	assert.True(t, ok)
	assert.Equal(t, float64(77), v)

	_, ok = Lookup(obj, "event_entry.rank")
	assert.False(t, ok, "null is treated as absent")

	_, ok = Lookup(obj, "room.room_id.deeper")
	assert.False(t, ok)
}

func TestString_AliasOrder(t *testing.T) {
	obj := decode(t, `{"id":"5","room":{"room_id":9}}`)
	s, ok := String(obj, roomIDAliases)
	assert.True(t, ok)
	assert.Equal(t, "5", s)

	obj = decode(t, `{"room":{"room_id":123456789}}`)
	s, ok = String(obj, roomIDAliases)
	assert.True(t, ok)
	assert.Equal(t, "123456789", s)
}

func TestString_SkipsEmpty(t *testing.T) {
	obj := decode(t, `{"room_name":"","name":"Alice"}`)
	s, ok := String(obj, []string{"room_name", "name"})
	assert.True(t, ok)
	assert.Equal(t, "Alice", s)
}

func TestToInt_Coercion(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(12), 12, true},
		{"34", 34, true},
		{"12.0", 12, true},
		{"1,234pt", 1234, true},
		{"1,234（集計中）", 1234, true},
		{"-5", -5, true},
		{"abc", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := ToInt(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestToInt_NonJSONNumbers(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{int64(7), 7},
		{uint8(3), 3},
		{float32(2.5), 2},
		{json.Number("42"), 42},
		{"007", 7},
		{"0,5pt", 5},
	}
	for _, tc := range cases {
		got, ok := ToInt(tc.in)
		assert.True(t, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestToString_Coercion(t *testing.T) {
	assert.Equal(t, "12", ToString(float64(12)))
	assert.Equal(t, "3.5", ToString(3.5))
	assert.Equal(t, "9", ToString(int64(9)))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "abc", ToString("  abc "))
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "", ToString(map[string]any{"a": 1}))
	assert.Equal(t, "", ToString([]any{1}))
}

func TestPoint_DegradesToZero(t *testing.T) {
	assert.Equal(t, 0, Point(decode(t, `{"point":"n/a"}`), pointAliases))
	assert.Equal(t, 0, Point(decode(t, `{}`), pointAliases))
	assert.Equal(t, 0, Point(decode(t, `{"point":-40}`), pointAliases))
	assert.Equal(t, 500, Point(decode(t, `{"event_entry":{"event_point":"500"}}`), pointAliases))
}

func TestPoint_FirstPresentAliasWins(t *testing.T) {
	// the first present alias decides even when a later one would parse
	obj := decode(t, `{"point":"???","total_point":900}`)
	assert.Equal(t, 0, Point(obj, pointAliases))
}

func TestRank_DegradesToNil(t *testing.T) {
	assert.Nil(t, Rank(decode(t, `{"rank":"?"}`), rankAliases))
	assert.Nil(t, Rank(decode(t, `{}`), rankAliases))

	r := Rank(decode(t, `{"position":"3位"}`), rankAliases)
	require.NotNil(t, r)
	assert.Equal(t, 3, *r)
}

func TestHas(t *testing.T) {
	assert.True(t, Has(decode(t, `{"room":{"id":1}}`), roomIDAliases))
	assert.False(t, Has(decode(t, `{"name":"x"}`), roomIDAliases))
}
