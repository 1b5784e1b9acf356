package store

import (
	"context"
	"fmt"

	"adminkit/internal/debug"

	"go.uber.org/zap"
)

var sampleTitles = map[string][]string{
	"products": {"Walnut desk lamp", "Linen throw pillow", "Ceramic pour-over set"},
	"posts":    {"Spring release notes", "How we ship on Fridays", "Welcome to the blog"},
	"banners":  {"Free shipping weekend", "Holiday hours"},
}

// Seed inserts sample records into every empty collection. It returns the
// number of records created.
func Seed(ctx context.Context, s Store, collections []string) (int, error) {
	created := 0
	for _, collection := range collections {
		n, err := s.Count(ctx, collection)
		if err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		titles, ok := sampleTitles[collection]
		if !ok {
			titles = []string{"First " + collection + " entry", "Second " + collection + " entry"}
		}
		for i, title := range titles {
			_, err := s.Create(ctx, Record{
				Collection: collection,
				Title:      title,
				Body:       fmt.Sprintf("# %s\n\nSample content for **%s**.\n\n- created by seed\n- item %d", title, collection, i+1),
				Published:  i%2 == 0,
			})
			if err != nil {
				return created, err
			}
			created++
		}
		debug.Logger().Info("seeded collection", zap.String("collection", collection), zap.Int("records", len(titles)))
	}
	return created, nil
}
