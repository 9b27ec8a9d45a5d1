package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/zine-site/cmd/tui"
	"github.com/Laisky/zine-site/library/log"
)

var searchCMD = &cobra.Command{
	Use:   "search <query...>",
	Short: "run one search and print the results",
	Long:  `search stories, pages and contributors once and print the merged results`,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, svc, err := openSearch(ctx)
		if err != nil {
			return errors.Wrap(err, "open search")
		}
		defer closeStore(ctx, store)

		resp, err := svc.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return errors.Wrap(err, "search")
		}

		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderResponse(resp))
		return nil
	},
}

func init() {
	rootCMD.AddCommand(searchCMD)
}
