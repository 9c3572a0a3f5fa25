package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/shiftline/internal/filter"
	"github.com/amishk599/shiftline/internal/model"
)

func TestConnector_ListAndDetail(t *testing.T) {
	page := newFakePage([]fakeCard{
		card(1, "Registered Nurse - ICU"),
		card(2, "CNA - Med Surg"),
		card(3, "Charge Nurse"),
	}, 3, 0)
	launcher := &fakeLauncher{page: page}
	d := newTestDriver(t, testOptions())
	f := filter.NewRoleFilter(filter.DefaultInclude, filter.DefaultExclude, nil)
	c := NewConnector(launcher, d, f, discardLogger())

	_, err := c.FetchDetail(context.Background(), model.RawListing{SourceID: "1"})
	var extractErr *model.ExtractionError
	assert.True(t, errors.As(err, &extractErr), "detail before listing degrades")

	got, err := c.ListPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got.Listings, 2)
	assert.Equal(t, 1, got.Filtered)
	assert.Empty(t, got.Next)
	assert.Equal(t, "Charge Nurse", got.Listings[1].Title)
	assert.Equal(t, 2, got.Listings[1].DOMIndex)

	next, err := c.ListPage(context.Background(), "more")
	require.NoError(t, err)
	assert.Empty(t, next.Listings)

	again, err := c.ListPage(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, again.Listings, 2, "a repeated first page reuses the collection")
	assert.Equal(t, 1, page.loads)

	l, err := c.FetchDetail(context.Background(), got.Listings[1])
	require.NoError(t, err)
	assert.True(t, l.DetailFetched)

	require.NoError(t, c.Close())
	assert.True(t, page.closed)
	assert.True(t, launcher.closed)
}
