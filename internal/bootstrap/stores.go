package bootstrap

import (
	"github.com/eleven-am/playback-gateway/internal/dialogue"
	"github.com/eleven-am/playback-gateway/internal/presence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideDialogueStore(db *gorm.DB) *dialogue.Store {
	return dialogue.NewStore(db)
}

func ProvidePresenceStore(redisClient *redis.Client) *presence.Store {
	return presence.NewStore(redisClient)
}

func RunMigrations(dialogueStore *dialogue.Store) error {
	return dialogueStore.Migrate()
}

// Migrate opens the database and applies the schema without starting the
// rest of the application.
func Migrate(cfg *Config) error {
	db, err := ProvideDatabase(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return RunMigrations(ProvideDialogueStore(db))
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideDialogueStore,
		ProvidePresenceStore,
	),
	fx.Invoke(RunMigrations),
)
