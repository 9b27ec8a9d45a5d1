package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/zine-site/internal/web"
	"github.com/Laisky/zine-site/internal/web/search/controller"
	"github.com/Laisky/zine-site/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `http search API for the zine site`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, svc, err := openSearch(ctx)
		if err != nil {
			log.Logger.Panic("open search", zap.Error(err))
		}
		defer closeStore(ctx, store)

		web.RunServer(gconfig.Shared.GetString("listen"), controller.New(svc))
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
