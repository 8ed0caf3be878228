package registry

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Ledger() TokenLedger
	PreVerifiedEmails() repository.Repository[*PreVerifiedEmail]
	FutureUsers() repository.Repository[*FutureUser]
	Clubs() repository.Repository[*Club]
	Tags() Tags
}

func NewPreVerifiedEmailsRepository(db *bun.DB) repository.Repository[*PreVerifiedEmail] {
	handlers := repository.ModelHandlers[*PreVerifiedEmail]{
		NewRecord: func() *PreVerifiedEmail {
			return &PreVerifiedEmail{}
		},
		GetID: func(record *PreVerifiedEmail) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PreVerifiedEmail, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewFutureUsersRepository(db *bun.DB) repository.Repository[*FutureUser] {
	handlers := repository.ModelHandlers[*FutureUser]{
		NewRecord: func() *FutureUser {
			return &FutureUser{}
		},
		GetID: func(record *FutureUser) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *FutureUser, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "org_email"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewClubsRepository(db *bun.DB) repository.Repository[*Club] {
	handlers := repository.ModelHandlers[*Club]{
		NewRecord: func() *Club {
			return &Club{}
		},
		GetID: func(record *Club) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Club, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}
	return repository.NewRepository(db, handlers)
}

// Tags is a thin catalog lookup; tags are integer keyed so they sit outside
// the uuid generic repository.
type Tags interface {
	GetByIDs(ctx context.Context, ids []int64) ([]Tag, error)
	Seed(ctx context.Context, tags []Tag) error
}

type tags struct {
	db *bun.DB
}

func NewTagsRepository(db *bun.DB) Tags {
	return &tags{db: db}
}

func (t *tags) GetByIDs(ctx context.Context, ids []int64) ([]Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []Tag
	err := t.db.NewSelect().Model(&records).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (t *tags) Seed(ctx context.Context, records []Tag) error {
	if len(records) == 0 {
		return nil
	}

	_, err := t.db.NewInsert().Model(&records).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	return err
}

type mngr struct {
	db                *bun.DB
	users             Users
	ledger            TokenLedger
	preVerifiedEmails repository.Repository[*PreVerifiedEmail]
	futureUsers       repository.Repository[*FutureUser]
	clubs             repository.Repository[*Club]
	tags              Tags
}

func NewRepositoryManager(db *bun.DB, logger Logger) RepositoryManager {
	return &mngr{
		db:                db,
		users:             NewUsersRepository(db),
		ledger:            NewTokenLedger(db, logger),
		preVerifiedEmails: NewPreVerifiedEmailsRepository(db),
		futureUsers:       NewFutureUsersRepository(db),
		clubs:             NewClubsRepository(db),
		tags:              NewTagsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.ledger == nil {
		return errors.New("repository ledger should be initialized")
	}

	if m.preVerifiedEmails == nil {
		return errors.New("repository preVerifiedEmails should be initialized")
	}

	if m.clubs == nil {
		return errors.New("repository clubs should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Ledger() TokenLedger {
	return m.ledger
}

func (m mngr) PreVerifiedEmails() repository.Repository[*PreVerifiedEmail] {
	return m.preVerifiedEmails
}

func (m mngr) FutureUsers() repository.Repository[*FutureUser] {
	return m.futureUsers
}

func (m mngr) Clubs() repository.Repository[*Club] {
	return m.clubs
}

func (m mngr) Tags() Tags {
	return m.tags
}
