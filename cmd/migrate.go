package cmd

import (
	"log"

	"playshare/config"
	"playshare/db"
	"playshare/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	Long:  `Connect to the database, create or update the playshare tables, and exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(
			&model.User{},
			&model.Playlist{},
			&model.Song{},
			&model.Review{},
			&model.PlaylistSong{},
		); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		log.Println("Migration completed.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
