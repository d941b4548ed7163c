package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/opensource-finance/bce/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// seedBundle is the file format accepted by bcectl seed.
type seedBundle struct {
	Items  []*domain.ExceptionItem `json:"items"`
	Cabins []domain.RBDCabin       `json:"cabins"`
	Zones  []*domain.Zone          `json:"zones"`
	TSIs   []*domain.TSIDefinition `json:"tsi"`
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		dir         string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "seed [FILE...]",
		Short: "Load exception items and reference data from JSON bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if dir != "" {
				found, err := bundleFiles(dir)
				if err != nil {
					return err
				}
				paths = append(paths, found...)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no bundle files given")
			}

			c := opts.client()
			for _, path := range paths {
				var b seedBundle
				if err := readJSON(cmd, path, &b); err != nil {
					return err
				}
				if err := seed(cmd.Context(), c, &b, concurrency); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items, %d cabins, %d zones, %d tsi\n",
					path, len(b.Items), len(b.Cabins), len(b.Zones), len(b.TSIs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of *.json bundles")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 8, "Concurrent item uploads")
	return cmd
}

func bundleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// seed stores reference data before items so a validation racing the
// seed sees complete tables.
func seed(ctx context.Context, c *client, b *seedBundle, concurrency int) error {
	if len(b.Cabins) > 0 {
		if err := c.postCabins(ctx, b.Cabins); err != nil {
			return fmt.Errorf("cabins: %w", err)
		}
	}
	for _, z := range b.Zones {
		if err := c.putZone(ctx, z); err != nil {
			return fmt.Errorf("zone %s: %w", z.Zone, err)
		}
	}
	for _, def := range b.TSIs {
		if err := c.postTSI(ctx, def); err != nil {
			return fmt.Errorf("tsi %d: %w", def.ID, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, item := range b.Items {
		g.Go(func() error {
			if err := c.putItem(ctx, item); err != nil {
				return fmt.Errorf("item %d: %w", item.ItemNo, err)
			}
			slog.Debug("item seeded", "item", item.ItemNo, "sequences", len(item.Sequences))
			return nil
		})
	}
	return g.Wait()
}
