package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/sportsreel-backend/internal/data/repos/testutil"
)

func TestVideoRepoPopularity(t *testing.T) {
	db := testutil.DB(t)
	repo := NewVideoRepo(db, testutil.Logger(t))
	ctx := context.Background()

	a := testutil.SeedVideo(t, ctx, db, "Dunk contest", "NBA", 100)
	b := testutil.SeedVideo(t, ctx, db, "Buzzer beaters", "NBA", 50)
	c := testutil.SeedVideo(t, ctx, db, "Hail mary", "NFL", 500)

	cases := []struct {
		name     string
		category string
		limit    int
		want     []int64
	}{
		{name: "top one", category: "NBA", limit: 1, want: []int64{a.ID}},
		{name: "all in category", category: "NBA", limit: 10, want: []int64{a.ID, b.ID}},
		{name: "other category", category: "NFL", limit: 10, want: []int64{c.ID}},
		{name: "category case and blanks ignored", category: " nba ", limit: 10, want: []int64{a.ID, b.ID}},
		{name: "empty category", category: "NHL", limit: 10, want: nil},
		{name: "zero limit", category: "NBA", limit: 0, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ListPopularByCategory(ctx, nil, tc.category, tc.limit)
			if err != nil {
				t.Fatalf("ListPopularByCategory: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d videos, got %d", len(tc.want), len(got))
			}
			for i := range got {
				if got[i].ID != tc.want[i] {
					t.Fatalf("position %d: expected %d, got %d", i, tc.want[i], got[i].ID)
				}
			}
		})
	}

	all, err := repo.ListPopular(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ListPopular: %v", err)
	}
	if len(all) != 2 || all[0].ID != c.ID || all[1].ID != a.ID {
		t.Fatalf("ListPopular: unexpected order: %+v", all)
	}

	cats, err := repo.CategoriesByIDs(ctx, nil, []int64{a.ID, c.ID})
	if err != nil {
		t.Fatalf("CategoriesByIDs: %v", err)
	}
	if cats[a.ID] != "NBA" || cats[c.ID] != "NFL" || len(cats) != 2 {
		t.Fatalf("CategoriesByIDs: unexpected map: %v", cats)
	}
}
