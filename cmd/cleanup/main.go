// Command cleanup purges transient, processed, and result files from the
// upload directory. Run it from cron or before deploys to reclaim space.
package main

import (
	"github.com/joho/godotenv"

	"fitroom-server/internal/infra"
	"fitroom-server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	files, err := storage.New(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("open upload directory")
	}

	removed := files.Cleanup()
	logger.Info().Int("removed", removed).Str("dir", cfg.UploadDir).Msg("cleanup finished")
}
