package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show collection statistics and the first points",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 5, "number of points to show")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := connectQdrant(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.GetCollectionInfo(ctx, cfg.Index.Collection)
	if err != nil {
		return err
	}

	fmt.Printf("Collection: %s\n", info.Name)
	fmt.Printf("  Status: %s\n", info.Status)
	fmt.Printf("  Points: %d\n", info.PointsCount)
	fmt.Printf("  Vectors: %d dimensions, %s distance\n", info.Dimension, info.Distance)

	points, err := store.Scroll(ctx, cfg.Index.Collection, inspectLimit)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tQUESTION\tANSWER")
	for _, p := range points {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Payload.Category, truncate(p.Payload.Question, 60), truncate(p.Payload.Answer, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
