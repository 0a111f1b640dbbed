package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	for _, kind := range Kinds() {
		cols, err := Schema(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, ColID, cols[0].Name)
		assert.Equal(t, ColCreatedAt, cols[1].Name)
	}

	_, err := Schema("users")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.True(t, HasColumn(KindItems, "is_starred"))
	assert.False(t, HasColumn(KindItems, "password"))
	assert.Len(t, Kinds(), 14)
}

func TestQueryOptions_Validate(t *testing.T) {
	ok := QueryOptions{
		Filters: []Filter{Eq("category_id", "c1"), Neq("is_starred", false)},
		OrderBy: []Order{Desc("is_starred"), Asc(ColCreatedAt)},
		Limit:   12,
	}
	assert.NoError(t, ok.Validate(KindItems))

	err := QueryOptions{Filters: []Filter{Eq("name; DROP TABLE tags", "x")}}.Validate(KindTags)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	err = QueryOptions{OrderBy: []Order{Asc("nope")}}.Validate(KindTags)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.Error(t, QueryOptions{Filters: []Filter{{Column: "name", Op: "LIKE"}}}.Validate(KindTags))
	assert.Error(t, QueryOptions{Limit: -1}.Validate(KindTags))
}

func TestCoerce(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := Coerce(KindAchievements, Record{
		"number": float64(1000000),
		"label":  "Views",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), got["number"])
	assert.Equal(t, "Views", got["label"])

	got, err = Coerce(KindTagPresets, Record{"tag_ids": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got["tag_ids"])

	got, err = Coerce(KindTagRequests, Record{"requested_at": ts.Format(time.RFC3339), "approved": nil})
	require.NoError(t, err)
	assert.True(t, ts.Equal(got.Time("requested_at")))
	assert.Equal(t, false, got["approved"])

	_, err = Coerce(KindAchievements, Record{"number": 1.5})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Coerce(KindCategories, Record{"is_hidden": "yes"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Coerce(KindCategories, Record{"bogus": 1})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"id": "x", "n": int64(3), "f": float64(4), "b": true, "l": []string{"a"}}
	assert.Equal(t, "x", r.ID())
	assert.Equal(t, int64(3), r.Int("n"))
	assert.Equal(t, int64(4), r.Int("f"))
	assert.True(t, r.Bool("b"))
	assert.Equal(t, []string{"a"}, r.Strings("l"))
	assert.Equal(t, "", r.String("missing"))
	assert.True(t, r.Time("missing").IsZero())

	c := r.Clone()
	c["id"] = "y"
	assert.Equal(t, "x", r.ID())
}

func TestDecodeModels(t *testing.T) {
	items := Decode([]Record{
		{"id": "i1", "file_url": "u", "file_type": FileImage, "category_id": "c", "order_index": int64(2), "is_starred": true},
	}, ItemFromRecord)
	require.Len(t, items, 1)
	assert.Equal(t, Item{ID: "i1", FileURL: "u", FileType: FileImage, CategoryID: "c", OrderIndex: 2, IsStarred: true}, items[0])

	item := items[0]
	item.Tags = []Tag{{Name: "gaming"}, {Name: "vlog"}}
	assert.Equal(t, []string{"gaming", "vlog"}, item.TagNames())

	assert.True(t, Achievement{Number: 1_000_000}.MillionViews())
	assert.False(t, Achievement{Number: 999_999}.MillionViews())
}
