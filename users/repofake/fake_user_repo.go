package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/ipo-auth-server/users"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.UserRepo with the same unique and sparse
// index rules as the Mongo collection.
type FakeUserRepo struct {
	users       map[string]*users.User
	emailIds    map[string]string // email to user id
	providerIds map[string]string // google id to user id
	lock        sync.RWMutex
	nowTime     func() time.Time

	// FailNext makes the next mutating call return this error.
	FailNext error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		emailIds:    make(map[string]string),
		providerIds: make(map[string]string),
		nowTime:     time.Now,
	}
}

func (ur *FakeUserRepo) takeFailure() error {
	err := ur.FailNext
	ur.FailNext = nil
	return err
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ur.takeFailure(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return pkgerrors.Wrap(err, "[FakeUserRepo.Create]")
	}
	if user.Email != "" {
		if _, ok := ur.emailIds[user.Email]; ok {
			return users.ErrDuplicate
		}
	}
	if user.GoogleID != "" {
		if _, ok := ur.providerIds[user.GoogleID]; ok {
			return users.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	now := ur.nowTime()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	ur.users[user.ID] = &stored
	if user.Email != "" {
		ur.emailIds[user.Email] = user.ID
	}
	if user.GoogleID != "" {
		ur.providerIds[user.GoogleID] = user.ID
	}
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string, opts ...users.GetOption) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.get(id, opts...)
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string, opts ...users.GetOption) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return ur.get(id, opts...)
}

func (ur *FakeUserRepo) GetByProviderID(_ context.Context, providerID string, opts ...users.GetOption) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.providerIds[providerID]
	if !ok {
		return nil, users.ErrNotFound
	}
	return ur.get(id, opts...)
}

func (ur *FakeUserRepo) get(id string, opts ...users.GetOption) (*users.User, error) {
	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	c := *u
	if !users.ApplyGetOptions(opts...).IncludePassword {
		c.PasswordHash = ""
	}
	return &c, nil
}

func (ur *FakeUserRepo) LinkProvider(_ context.Context, userID, providerID string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ur.takeFailure(); err != nil {
		return err
	}
	u, ok := ur.users[userID]
	if !ok {
		return users.ErrNotFound
	}
	if u.GoogleID != "" {
		return users.ErrDuplicate
	}
	if _, taken := ur.providerIds[providerID]; taken {
		return users.ErrDuplicate
	}
	u.GoogleID = providerID
	u.UpdatedAt = ur.nowTime()
	ur.providerIds[providerID] = userID
	return nil
}

func (ur *FakeUserRepo) SetResetToken(_ context.Context, userID, tokenHash string, expires time.Time) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ur.takeFailure(); err != nil {
		return err
	}
	u, ok := ur.users[userID]
	if !ok {
		return users.ErrNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpires = &expires
	u.UpdatedAt = ur.nowTime()
	return nil
}

func (ur *FakeUserRepo) ClearResetToken(_ context.Context, userID string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ur.takeFailure(); err != nil {
		return err
	}
	u, ok := ur.users[userID]
	if !ok {
		return users.ErrNotFound
	}
	u.ResetTokenHash = ""
	u.ResetTokenExpires = nil
	u.UpdatedAt = ur.nowTime()
	return nil
}

func (ur *FakeUserRepo) CompleteReset(_ context.Context, userID, tokenHash, passwordHash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ur.takeFailure(); err != nil {
		return err
	}
	u, ok := ur.users[userID]
	if !ok || u.ResetTokenHash == "" || u.ResetTokenHash != tokenHash {
		return users.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = ""
	u.ResetTokenExpires = nil
	u.UpdatedAt = ur.nowTime()
	return nil
}
