package fakeiporepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/ipo-auth-server/ipos"
)

var _ ipos.Repo = (*FakeIPORepo)(nil)

type FakeIPORepo struct {
	ipos    map[string]*ipos.IPO
	lock    sync.RWMutex
	nowTime func() time.Time

	// FailNext makes the next call return this error.
	FailNext error
}

func NewFakeIPORepo() *FakeIPORepo {
	return &FakeIPORepo{
		ipos:    make(map[string]*ipos.IPO),
		nowTime: time.Now,
	}
}

func (r *FakeIPORepo) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

func clone(i *ipos.IPO) *ipos.IPO {
	c := *i
	if i.CompanyLogo != nil {
		logo := *i.CompanyLogo
		c.CompanyLogo = &logo
	}
	return &c
}

func (r *FakeIPORepo) Create(_ context.Context, ipo *ipos.IPO) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}
	if ipo.ID == "" {
		ipo.ID = ipos.NewID()
	}
	now := r.nowTime()
	ipo.CreatedAt, ipo.UpdatedAt = now, now
	r.ipos[ipo.ID] = clone(ipo)
	return nil
}

func (r *FakeIPORepo) List(_ context.Context) ([]*ipos.IPO, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	list := make([]*ipos.IPO, 0, len(r.ipos))
	for _, i := range r.ipos {
		list = append(list, clone(i))
	}
	sort.Slice(list, func(a, b int) bool {
		return list[a].CreatedAt.Before(list[b].CreatedAt)
	})
	return list, nil
}

func (r *FakeIPORepo) Get(_ context.Context, id string) (*ipos.IPO, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	i, ok := r.ipos[id]
	if !ok {
		return nil, ipos.ErrNotFound
	}
	return clone(i), nil
}

func (r *FakeIPORepo) Delete(_ context.Context, id string) (*ipos.IPO, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	i, ok := r.ipos[id]
	if !ok {
		return nil, ipos.ErrNotFound
	}
	delete(r.ipos, id)
	return i, nil
}

func (r *FakeIPORepo) Update(_ context.Context, id string, update *ipos.Update) (*ipos.IPO, error) {
	return r.mutate(id, func(i *ipos.IPO) {
		update.Apply(i)
	})
}

func (r *FakeIPORepo) SetLogo(_ context.Context, id string, logo *ipos.Logo) (*ipos.IPO, error) {
	return r.mutate(id, func(i *ipos.IPO) {
		i.CompanyLogo = logo
	})
}

func (r *FakeIPORepo) mutate(id string, fn func(*ipos.IPO)) (*ipos.IPO, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	i, ok := r.ipos[id]
	if !ok {
		return nil, ipos.ErrNotFound
	}
	fn(i)
	i.UpdatedAt = r.nowTime()
	return clone(i), nil
}

func (r *FakeIPORepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.ipos)
}
