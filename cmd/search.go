package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/presence-cli/internal/model"
)

var (
	searchLocation string
	searchRadius   int
	searchCats     []string
	searchType     string
	searchExclude  []string
	searchLimit    int
	searchSkip     int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for businesses near a location and classify their web presence",
	Example: `  presence-cli search --location "Austin, TX"
  presence-cli search --location "Austin, TX" --radius 10000 --categories restaurant
  presence-cli search --location "Austin, TX" --website-type none --limit 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		var excludes []model.WebsiteType
		for _, t := range searchExclude {
			excludes = append(excludes, model.WebsiteType(t))
		}

		result, err := e.Search.Search(ctx, model.SearchParams{
			Location:            searchLocation,
			Radius:              searchRadius,
			Categories:          searchCats,
			WebsiteType:         model.WebsiteType(searchType),
			ExcludeWebsiteTypes: excludes,
			Limit:               searchLimit,
			Skip:                searchSkip,
		})
		if err != nil {
			return err
		}

		if searchJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(cmd, result)
		return nil
	},
}

func printResult(cmd *cobra.Command, result *model.SearchResult) {
	out := cmd.OutOrStdout()
	for _, b := range result.Businesses {
		fmt.Fprintf(out, "%-40s  %-10s  %s\n", truncate(b.Name, 40), b.WebsiteType, b.Address)
		if b.WebsiteURL != "" {
			fmt.Fprintf(out, "  site: %s\n", b.WebsiteURL)
		}
		if gaps := describeGaps(b.Improvements); gaps != "" {
			fmt.Fprintf(out, "  gaps: %s\n", gaps)
		}
	}
	fmt.Fprintf(out, "\n%d shown, %d unique places found", len(result.Businesses), result.TotalCount)
	if result.HasMore {
		fmt.Fprintf(out, " (more available, use --skip %d)", searchSkip+len(result.Businesses))
	}
	fmt.Fprintln(out)
}

func describeGaps(f model.ImprovementFlags) string {
	var gaps []string
	if f.NeedsWebsite {
		gaps = append(gaps, "website")
	}
	if f.NeedsPhone {
		gaps = append(gaps, "phone")
	}
	if f.NeedsPhotos {
		gaps = append(gaps, "photos")
	}
	return strings.Join(gaps, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "location to search around (required)")
	searchCmd.Flags().IntVar(&searchRadius, "radius", 0, "search radius in meters (default from config)")
	searchCmd.Flags().StringSliceVar(&searchCats, "categories", nil, "business categories to search for")
	searchCmd.Flags().StringVar(&searchType, "website-type", "", "keep only this website type (none|facebook|yelp|other|legitimate)")
	searchCmd.Flags().StringSliceVar(&searchExclude, "exclude-website-types", nil, "website types to drop")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results per page (default from config)")
	searchCmd.Flags().IntVar(&searchSkip, "skip", 0, "results to skip for pagination")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output JSON")
	_ = searchCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(searchCmd)
}
