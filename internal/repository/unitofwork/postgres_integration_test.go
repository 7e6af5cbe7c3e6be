package unitofwork

import (
	"context"
	"os"
	"testing"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/model"
	"ai-meetnotes/internal/repository/specification"
	"ai-meetnotes/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real postgres when DB_CONNECTION_STRING_TEST is set.
func TestPostgresWiring(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING_TEST")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING_TEST not set")
	}

	db, err := database.NewGormDB(database.DriverPostgres, dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	ctx := context.Background()
	uow := NewRepositoryFactory(db).NewUnitOfWork(ctx)

	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	s := &entity.Session{UserId: uuid.New(), Title: "Integration " + uuid.NewString()}
	require.NoError(t, uow.SessionRepository().Create(ctx, s))

	got, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.Title, got.Title)

	// Rolled back by the deferred Rollback; nothing is left behind.
}
