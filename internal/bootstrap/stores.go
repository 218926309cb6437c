package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/batch"
	"github.com/eleven-am/transcribe-relay/internal/session"
)

func ProvideAPIKeyStore(db *gorm.DB) *apikey.Store {
	return apikey.NewStore(db)
}

func ProvideSessionStore(redisClient *redis.Client) *session.Store {
	return session.NewStore(redisClient)
}

func ProvideJobStore(db *gorm.DB) *batch.JobStore {
	return batch.NewJobStore(db)
}

func RunMigrations(apiKeyStore *apikey.Store, jobStore *batch.JobStore) error {
	if err := apiKeyStore.Migrate(); err != nil {
		return err
	}
	return jobStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideAPIKeyStore,
		ProvideSessionStore,
		ProvideJobStore,
	),
	fx.Invoke(RunMigrations),
)
