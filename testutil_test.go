package registry_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sproulclub/registry"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// capturingMailer records outbound email instead of sending it.
type capturingMailer struct {
	mu       sync.Mutex
	messages []capturedMail
}

type capturedMail struct {
	Recipients []string
	Subject    string
	Body       string
}

func (m *capturingMailer) Send(ctx context.Context, recipients []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, capturedMail{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
	})
	return nil
}

func (m *capturingMailer) sent() []capturedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]capturedMail, len(m.messages))
	copy(out, m.messages)
	return out
}

// capturingSink records activity events for assertions.
type capturingSink struct {
	events []registry.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt registry.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	models := []any{
		(*registry.User)(nil),
		(*registry.AccessJTI)(nil),
		(*registry.RefreshJTI)(nil),
		(*registry.PreVerifiedEmail)(nil),
		(*registry.FutureUser)(nil),
		(*registry.Club)(nil),
		(*registry.Tag)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	return db
}

func setupRepoManager(t *testing.T) registry.RepositoryManager {
	t.Helper()

	repo := registry.NewRepositoryManager(setupTestDB(t), nil)
	require.NoError(t, repo.Validate())
	return repo
}

func allowEmail(t *testing.T, repo registry.RepositoryManager, email string) {
	t.Helper()

	_, err := repo.PreVerifiedEmails().Create(context.Background(), &registry.PreVerifiedEmail{
		ID:    uuid.New(),
		Email: email,
	})
	require.NoError(t, err)
}
