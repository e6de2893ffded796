package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/presence-cli/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the vendor response cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired geocode and place-detail cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "caching is disabled, nothing to purge")
			return nil
		}
		defer func(st store.Store) { _ = st.Close() }(st)

		n, err := st.DeleteExpired(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired cache entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
