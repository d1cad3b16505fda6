package cmd

import (
	"log"

	"github.com/AyoubFaradi/emotion-ai/config"
	"github.com/AyoubFaradi/emotion-ai/database"
	"github.com/spf13/cobra"
)

// migrateCmd 独立执行数据库DDL，不启动服务器
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migration and exit",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		db, err := database.NewDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.Close(db)

		if err := database.WaitForDB(db, cfg.DBWaitMaxRetries, cfg.DBWaitDelay); err != nil {
			log.Fatalf("Database not reachable: %v", err)
		}

		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		log.Println("Migration completed successfully")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
