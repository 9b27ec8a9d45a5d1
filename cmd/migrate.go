package cmd

import (
	"context"

	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/zine-site/internal/web/search/dao"
	"github.com/Laisky/zine-site/library/log"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `create the indexes or tables the content store queries rely on,
and render every markdown body into the body text search matches on`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		settings := dao.LoadSettings()
		settings.Cache.Enabled = false

		store, err := dao.Open(ctx, settings)
		if err != nil {
			log.Logger.Panic("open content store", zap.Error(err))
		}
		defer closeStore(ctx, store)

		var n int
		switch {
		case store.Mongo != nil:
			if err = store.Mongo.EnsureIndexes(ctx); err == nil {
				n, err = store.Mongo.BackfillBodyText(ctx)
			}
		case store.Postgres != nil:
			if err = store.Postgres.EnsureSchema(ctx); err == nil {
				n, err = store.Postgres.BackfillBodyText(ctx)
			}
		}
		if err != nil {
			log.Logger.Panic("migrate", zap.Error(err), zap.String("driver", settings.Driver))
		}

		log.Logger.Info("migrate done",
			zap.String("driver", settings.Driver),
			zap.Int("body_texts", n))
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
