package responsecache_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/goliatone/go-response-cache/cursor"
	"github.com/goliatone/go-response-cache/responsecache"
)

// seedReportEntries installs the three-entry fixture used by the
// pagination tests: one success and two failures with decreasing amounts
// of error context.
func seedReportEntries(t *testing.T, splits *responsecache.Table[responsecache.SplitsKey]) {
	t.Helper()
	ctx := context.Background()

	if err := splits.Upsert(ctx, responsecache.SplitsKey{Dataset: "a"}, responsecache.Document{"key": "value"}, 200, "", nil); err != nil {
		t.Fatalf("upsert a failed: %v", err)
	}
	detailsB := &responsecache.ErrorDetails{
		Message:        "error B",
		CauseException: "ExceptionB",
		CauseMessage:   "Cause message B",
		CauseTraceback: []string{"B"},
	}
	if err := splits.Upsert(ctx, responsecache.SplitsKey{Dataset: "b"}, responsecache.Document{"key": "value"}, 500, "ErrorCodeB", detailsB); err != nil {
		t.Fatalf("upsert b failed: %v", err)
	}
	if err := splits.Upsert(ctx, responsecache.SplitsKey{Dataset: "c"}, responsecache.Document{"key": "value"}, 500, "ErrorCodeC", nil); err != nil {
		t.Fatalf("upsert c failed: %v", err)
	}
}

func TestListReportsPagination(t *testing.T) {
	splits, _ := newTables(t)
	ctx := context.Background()
	seedReportEntries(t, splits)

	first, err := splits.ListReportsPage(ctx, "", 2)
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(first.Reports) != 2 {
		t.Fatalf("expected 2 reports on the first page, got %d", len(first.Reports))
	}
	if first.NextCursor == "" {
		t.Fatal("expected a non-empty cursor when more data remains")
	}

	a := first.Reports[0]
	if a.Key.Dataset != "a" || a.HTTPStatus != 200 || a.Error != nil {
		t.Errorf("unexpected first report: %+v", a)
	}

	b := first.Reports[1]
	if b.Key.Dataset != "b" || b.HTTPStatus != 500 {
		t.Errorf("unexpected second report: %+v", b)
	}
	wantErr := &responsecache.ReportError{
		Message:        "error B",
		ErrorCode:      "ErrorCodeB",
		CauseException: "ExceptionB",
		CauseMessage:   "Cause message B",
		CauseTraceback: []string{"B"},
	}
	if !reflect.DeepEqual(b.Error, wantErr) {
		t.Errorf("error object mismatch:\ngot  %+v\nwant %+v", b.Error, wantErr)
	}

	second, err := splits.ListReportsPage(ctx, first.NextCursor, 2)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second.Reports) != 1 {
		t.Fatalf("expected 1 report on the second page, got %d", len(second.Reports))
	}
	if second.NextCursor != "" {
		t.Errorf("expected an empty cursor on the last page, got %q", second.NextCursor)
	}

	c := second.Reports[0]
	if c.Key.Dataset != "c" || c.HTTPStatus != 500 || c.Error == nil {
		t.Fatalf("unexpected last report: %+v", c)
	}
	// With no stored details the message falls back to the error code.
	if c.Error.Message != "ErrorCodeC" || c.Error.ErrorCode != "ErrorCodeC" {
		t.Errorf("unexpected error object: %+v", c.Error)
	}
}

func TestListReportsInvalidCursor(t *testing.T) {
	splits, _ := newTables(t)
	seedReportEntries(t, splits)

	_, err := splits.ListReportsPage(context.Background(), "not an objectid", 2)
	if !errors.Is(err, cursor.ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestListReportsInvalidLimit(t *testing.T) {
	splits, _ := newTables(t)
	seedReportEntries(t, splits)

	for _, limit := range []int{0, -1} {
		if _, err := splits.ListReportsPage(context.Background(), "", limit); !errors.Is(err, responsecache.ErrInvalidLimit) {
			t.Errorf("limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
}

func TestListReportsEmptyTable(t *testing.T) {
	splits, _ := newTables(t)

	page, err := splits.ListReportsPage(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if len(page.Reports) != 0 || page.NextCursor != "" {
		t.Errorf("expected an empty terminal page, got %+v", page)
	}
}

func TestListReportsWalksEveryEntryOnce(t *testing.T) {
	_, firstRows := newTables(t)
	ctx := context.Background()

	const total = 17
	for i := 0; i < total; i++ {
		key := responsecache.FirstRowsKey{
			Dataset: fmt.Sprintf("dataset_%02d", i),
			Config:  "default",
			Split:   "train",
		}
		if err := firstRows.Upsert(ctx, key, responsecache.Document{}, 200, "", nil); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	seen := make(map[string]int)
	cur := ""
	pages := 0
	for {
		page, err := firstRows.ListReportsPage(ctx, cur, 5)
		if err != nil {
			t.Fatalf("page %d failed: %v", pages, err)
		}
		for _, report := range page.Reports {
			seen[report.Key.Dataset]++
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cur = page.NextCursor
	}

	if len(seen) != total {
		t.Fatalf("expected %d distinct entries, saw %d", total, len(seen))
	}
	for dataset, n := range seen {
		if n != 1 {
			t.Errorf("entry %s seen %d times", dataset, n)
		}
	}
	if pages != 4 {
		t.Errorf("expected 4 pages of 5 for %d entries, got %d", total, pages)
	}
}
