package pagination

import (
	"errors"
	"net/url"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		opts    Options
		want    Params
		wantErr error
	}{
		{name: "defaults", query: "", want: Params{Page: 1, Limit: DefaultLimit}},
		{name: "endpoint default", query: "", opts: Options{DefaultLimit: 50}, want: Params{Page: 1, Limit: 50}},
		{name: "explicit", query: "page=2&limit=10", want: Params{Page: 2, Limit: 10}},
		{name: "limit above max clamps", query: "limit=500", want: Params{Page: 1, Limit: 100}},
		{name: "limit below min clamps", query: "limit=0", want: Params{Page: 1, Limit: 1}},
		{name: "negative page clamps", query: "page=-3", want: Params{Page: 1, Limit: DefaultLimit}},
		{name: "huge page clamps", query: "page=9223372036854775807&limit=10", want: Params{Page: MaxOffset/10 + 1, Limit: 10}},
		{name: "non numeric page", query: "page=two", wantErr: ErrInvalidPage},
		{name: "non numeric limit", query: "limit=ten", wantErr: ErrInvalidLimit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tc.query)
			got, err := Parse(values, tc.opts)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMetaAndSlice(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}
	p := Params{Page: 2, Limit: 10}

	meta := p.Meta(len(items))
	if meta.TotalPages != 3 || meta.Total != 25 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	page := Slice(items, p)
	if len(page) != 10 || page[0] != 11 || page[9] != 20 {
		t.Fatalf("expected items 11-20, got %v", page)
	}

	last := Slice(items, Params{Page: 3, Limit: 10})
	if len(last) != 5 || last[0] != 21 {
		t.Fatalf("expected trailing items, got %v", last)
	}
	if beyond := Slice(items, Params{Page: 9, Limit: 10}); len(beyond) != 0 {
		t.Fatalf("expected empty page past the end, got %v", beyond)
	}
	if got := (Params{Page: 1, Limit: 10}).Meta(0).TotalPages; got != 0 {
		t.Fatalf("expected zero pages for empty set, got %d", got)
	}
}

func TestOffsetDoesNotOverflow(t *testing.T) {
	p := Params{Page: 1<<62 + 1, Limit: MaxLimit}
	if got := p.Offset(); got != MaxOffset {
		t.Fatalf("expected offset capped at %d, got %d", MaxOffset, got)
	}
	items := []int{1, 2, 3}
	if got := Slice(items, p); len(got) != 0 {
		t.Fatalf("expected an empty page past the end, got %v", got)
	}
}
