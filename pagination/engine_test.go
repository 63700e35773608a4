package pagination_test

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/stretchr/testify/require"
)

type fruit struct {
	id   string
	name string
}

func (f fruit) CursorValue(field string) string {
	switch field {
	case "name":
		return f.name
	default:
		return f.id
	}
}

type testFixture struct {
	engine *pagination.Engine
	items  []fruit
	store  *pagination.SliceStore[fruit]
}

func setupTestFixture(t *testing.T, size int, options ...pagination.EngineOption) *testFixture {
	t.Helper()

	items := make([]fruit, size)
	for i := range items {
		items[i] = fruit{id: fmt.Sprintf("%04d", i), name: fmt.Sprintf("Orange %d", i)}
	}
	return &testFixture{
		engine: pagination.NewEngine(options...),
		items:  items,
		store:  pagination.NewSliceStore(items),
	}
}

func ids(c *pagination.Connection[fruit]) []string {
	out := make([]string, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node.id)
	}
	return out
}

// page runs the same request against both variants and checks they agree.
func (f *testFixture) page(t *testing.T, orderBy string, args pagination.Args) *pagination.Connection[fruit] {
	t.Helper()

	fromStore, err := pagination.FromStore(context.Background(), f.engine, f.store, "fruits", orderBy, args)
	require.NoError(t, err)
	fromSlice, err := pagination.FromSlice(f.engine, f.items, "fruits", orderBy, args)
	require.NoError(t, err)

	require.Equal(t, ids(fromStore), ids(fromSlice))
	require.Equal(t, fromStore.PageInfo, fromSlice.PageInfo)
	return fromStore
}

func TestFromStore_FirstPage(t *testing.T) {
	f := setupTestFixture(t, 1000)

	c := f.page(t, "id", pagination.Args{First: utils.Ptr(10)})
	require.Len(t, c.Edges, 10)
	require.Equal(t, "0000", c.Edges[0].Node.id)
	require.Equal(t, pagination.EncodeCursor("0000"), *c.PageInfo.StartCursor)
	require.Equal(t, pagination.EncodeCursor("0009"), *c.PageInfo.EndCursor)
	require.True(t, c.PageInfo.HasNextPage)
	require.False(t, c.PageInfo.HasPreviousPage)

	total, err := c.TotalCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1000, total)
}

func TestFromStore_ForwardContinuation(t *testing.T) {
	f := setupTestFixture(t, 25)

	seen := []string{}
	args := pagination.Args{First: utils.Ptr(10)}
	for {
		c := f.page(t, "id", args)
		seen = append(seen, ids(c)...)
		if !c.PageInfo.HasNextPage {
			break
		}
		require.True(t, len(seen) < 25)
		args.After = c.PageInfo.EndCursor
	}

	require.Len(t, seen, 25)
	for i, id := range seen {
		require.Equal(t, fmt.Sprintf("%04d", i), id)
	}
}

func TestFromStore_BackwardSymmetry(t *testing.T) {
	f := setupTestFixture(t, 30)

	forward := f.page(t, "id", pagination.Args{First: utils.Ptr(10)})
	next := pagination.EncodeCursor("0010")

	backward := f.page(t, "id", pagination.Args{Last: utils.Ptr(10), Before: &next})
	require.Equal(t, ids(forward), ids(backward))
	require.False(t, backward.PageInfo.HasPreviousPage)
	require.True(t, backward.PageInfo.HasNextPage)
}

func TestFromStore_LastWithoutCursor(t *testing.T) {
	f := setupTestFixture(t, 30)

	c := f.page(t, "id", pagination.Args{Last: utils.Ptr(5)})
	require.Equal(t, []string{"0025", "0026", "0027", "0028", "0029"}, ids(c))
	require.True(t, c.PageInfo.HasPreviousPage)
	require.False(t, c.PageInfo.HasNextPage)
}

func TestFromStore_Descending(t *testing.T) {
	f := setupTestFixture(t, 30)

	c := f.page(t, "-id", pagination.Args{First: utils.Ptr(3)})
	require.Equal(t, []string{"0029", "0028", "0027"}, ids(c))

	c = f.page(t, "-id", pagination.Args{First: utils.Ptr(3), After: c.PageInfo.EndCursor})
	require.Equal(t, []string{"0026", "0025", "0024"}, ids(c))
	require.True(t, c.PageInfo.HasPreviousPage)
}

func TestFromStore_AfterWinsOverBefore(t *testing.T) {
	f := setupTestFixture(t, 30)

	after := pagination.EncodeCursor("0004")
	before := pagination.EncodeCursor("0002")
	c := f.page(t, "id", pagination.Args{First: utils.Ptr(2), After: &after, Before: &before})
	require.Equal(t, []string{"0005", "0006"}, ids(c))
}

func TestFromStore_Offset(t *testing.T) {
	f := setupTestFixture(t, 30)

	c := f.page(t, "id", pagination.Args{First: utils.Ptr(2), Offset: utils.Ptr(3)})
	require.Equal(t, []string{"0003", "0004"}, ids(c))
	require.True(t, c.PageInfo.HasPreviousPage)
}

func TestFromStore_Empty(t *testing.T) {
	f := setupTestFixture(t, 0)

	c := f.page(t, "id", pagination.Args{First: utils.Ptr(10)})
	require.Empty(t, c.Edges)
	require.Nil(t, c.PageInfo.StartCursor)
	require.Nil(t, c.PageInfo.EndCursor)
	require.False(t, c.PageInfo.HasNextPage)
}

func TestLegacyPageInfo(t *testing.T) {
	f := setupTestFixture(t, 5, pagination.WithLegacyPageInfo())

	c := f.page(t, "id", pagination.Args{First: utils.Ptr(10)})
	require.Len(t, c.Edges, 5)
	require.True(t, c.PageInfo.HasNextPage)
	require.True(t, c.PageInfo.HasPreviousPage)
}

func TestFromSlice_UnknownCursorIsIgnored(t *testing.T) {
	f := setupTestFixture(t, 10)

	after := pagination.EncodeCursor("nope")
	c, err := pagination.FromSlice(f.engine, f.items, "fruits", "id", pagination.Args{First: utils.Ptr(2), After: &after})
	require.NoError(t, err)
	require.Equal(t, []string{"0000", "0001"}, ids(c))
}

func TestConnection_Length(t *testing.T) {
	f := setupTestFixture(t, 10)

	c := f.page(t, "id", pagination.Args{First: utils.Ptr(2)})
	c.Length = utils.Ptr(2)
	total, err := c.TotalCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestFromSlice_LengthIsWholeSlice(t *testing.T) {
	f := setupTestFixture(t, 10)

	c, err := pagination.FromSlice(f.engine, f.items[2:9], "fruits", "id", pagination.Args{First: utils.Ptr(3)})
	require.NoError(t, err)
	require.NotNil(t, c.Length)
	require.Equal(t, 7, *c.Length)
	total, err := c.TotalCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, total)
}

func TestFromSlice_KeepsGivenOrder(t *testing.T) {
	f := setupTestFixture(t, 5)
	items := []fruit{f.items[3], f.items[0], f.items[4], f.items[1]}

	c, err := pagination.FromSlice(f.engine, items, "fruits", "id", pagination.Args{First: utils.Ptr(2)})
	require.NoError(t, err)
	require.Equal(t, []string{"0003", "0000"}, ids(c))

	c, err = pagination.FromSlice(f.engine, items, "fruits", "id", pagination.Args{First: utils.Ptr(2), After: c.PageInfo.EndCursor})
	require.NoError(t, err)
	require.Equal(t, []string{"0004", "0001"}, ids(c))
	require.False(t, c.PageInfo.HasNextPage)
}

func TestEngine_Validate(t *testing.T) {
	engine := pagination.NewEngine(pagination.WithMaxLimit(50), pagination.WithFirstOrLastRequired(true))
	before := pagination.EncodeCursor("x")

	tests := []struct {
		name    string
		args    pagination.Args
		message string
	}{
		{
			name:    "missing first and last",
			args:    pagination.Args{},
			message: "You must provide a `first` or `last` value to properly paginate the `fruits` connection.",
		},
		{
			name:    "first too large",
			args:    pagination.Args{First: utils.Ptr(51)},
			message: "Requesting 51 records on the `fruits` connection exceeds the `first` limit of 50 records.",
		},
		{
			name:    "last too large",
			args:    pagination.Args{Last: utils.Ptr(100)},
			message: "Requesting 100 records on the `fruits` connection exceeds the `last` limit of 50 records.",
		},
		{
			name:    "before with offset",
			args:    pagination.Args{First: utils.Ptr(1), Offset: utils.Ptr(1), Before: &before},
			message: "You can't provide a `before` value at the same time as an `offset` value to properly paginate the `fruits` connection.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Validate("fruits", tt.args)
			var validation *apperrors.ValidationError
			require.ErrorAs(t, err, &validation)
			require.Equal(t, tt.message, validation.Errors[0].Message)
		})
	}

	require.NoError(t, engine.Validate("fruits", pagination.Args{First: utils.Ptr(50)}))
}

func TestCursor_RoundTrip(t *testing.T) {
	value, err := pagination.DecodeCursor(pagination.EncodeCursor("Orange 7"))
	require.NoError(t, err)
	require.Equal(t, "Orange 7", value)

	_, err = pagination.DecodeCursor("%%%")
	require.Error(t, err)
}
