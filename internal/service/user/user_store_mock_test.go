package user

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
)

var _ userStore = &userStoreMock{}

type userStoreMock struct {
	FindIDByNameFunc func(ctx context.Context, name string) (uuid.UUID, bool, error)
	ExistsByNameFunc func(ctx context.Context, name string) (bool, error)
	ExistsByIDFunc   func(ctx context.Context, id uuid.UUID) (bool, error)
	InsertFunc       func(ctx context.Context, rec *domain.UserRecord) error
	UpdateFunc       func(ctx context.Context, rec *domain.UserRecord) error
	DeleteFunc       func(ctx context.Context, rec *domain.UserRecord) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error)
	ListAllFunc      func(ctx context.Context) (map[string]uuid.UUID, error)

	calls struct {
		FindIDByName []struct {
			Ctx  context.Context
			Name string
		}
		ExistsByName []struct {
			Ctx  context.Context
			Name string
		}
		ExistsByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Insert []struct {
			Ctx context.Context
			Rec *domain.UserRecord
		}
		Update []struct {
			Ctx context.Context
			Rec *domain.UserRecord
		}
		Delete []struct {
			Ctx context.Context
			Rec *domain.UserRecord
		}
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ListAll []struct {
			Ctx context.Context
		}
	}
	lockFindIDByName sync.RWMutex
	lockExistsByName sync.RWMutex
	lockExistsByID   sync.RWMutex
	lockInsert       sync.RWMutex
	lockUpdate       sync.RWMutex
	lockDelete       sync.RWMutex
	lockGetByID      sync.RWMutex
	lockListAll      sync.RWMutex
}

func (mock *userStoreMock) FindIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	if mock.FindIDByNameFunc == nil {
		panic("userStoreMock.FindIDByNameFunc: method is nil but userStore.FindIDByName was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Name string
	}{Ctx: ctx, Name: name}
	mock.lockFindIDByName.Lock()
	mock.calls.FindIDByName = append(mock.calls.FindIDByName, callInfo)
	mock.lockFindIDByName.Unlock()
	return mock.FindIDByNameFunc(ctx, name)
}

func (mock *userStoreMock) FindIDByNameCalls() []struct {
	Ctx  context.Context
	Name string
} {
	mock.lockFindIDByName.RLock()
	calls := mock.calls.FindIDByName
	mock.lockFindIDByName.RUnlock()
	return calls
}

func (mock *userStoreMock) ExistsByName(ctx context.Context, name string) (bool, error) {
	if mock.ExistsByNameFunc == nil {
		panic("userStoreMock.ExistsByNameFunc: method is nil but userStore.ExistsByName was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Name string
	}{Ctx: ctx, Name: name}
	mock.lockExistsByName.Lock()
	mock.calls.ExistsByName = append(mock.calls.ExistsByName, callInfo)
	mock.lockExistsByName.Unlock()
	return mock.ExistsByNameFunc(ctx, name)
}

func (mock *userStoreMock) ExistsByNameCalls() []struct {
	Ctx  context.Context
	Name string
} {
	mock.lockExistsByName.RLock()
	calls := mock.calls.ExistsByName
	mock.lockExistsByName.RUnlock()
	return calls
}

func (mock *userStoreMock) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if mock.ExistsByIDFunc == nil {
		panic("userStoreMock.ExistsByIDFunc: method is nil but userStore.ExistsByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockExistsByID.Lock()
	mock.calls.ExistsByID = append(mock.calls.ExistsByID, callInfo)
	mock.lockExistsByID.Unlock()
	return mock.ExistsByIDFunc(ctx, id)
}

func (mock *userStoreMock) ExistsByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockExistsByID.RLock()
	calls := mock.calls.ExistsByID
	mock.lockExistsByID.RUnlock()
	return calls
}

func (mock *userStoreMock) Insert(ctx context.Context, rec *domain.UserRecord) error {
	if mock.InsertFunc == nil {
		panic("userStoreMock.InsertFunc: method is nil but userStore.Insert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Rec *domain.UserRecord
	}{Ctx: ctx, Rec: rec}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, callInfo)
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, rec)
}

func (mock *userStoreMock) InsertCalls() []struct {
	Ctx context.Context
	Rec *domain.UserRecord
} {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

func (mock *userStoreMock) Update(ctx context.Context, rec *domain.UserRecord) error {
	if mock.UpdateFunc == nil {
		panic("userStoreMock.UpdateFunc: method is nil but userStore.Update was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Rec *domain.UserRecord
	}{Ctx: ctx, Rec: rec}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, rec)
}

func (mock *userStoreMock) UpdateCalls() []struct {
	Ctx context.Context
	Rec *domain.UserRecord
} {
	mock.lockUpdate.RLock()
	calls := mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}

func (mock *userStoreMock) Delete(ctx context.Context, rec *domain.UserRecord) error {
	if mock.DeleteFunc == nil {
		panic("userStoreMock.DeleteFunc: method is nil but userStore.Delete was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Rec *domain.UserRecord
	}{Ctx: ctx, Rec: rec}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, rec)
}

func (mock *userStoreMock) DeleteCalls() []struct {
	Ctx context.Context
	Rec *domain.UserRecord
} {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

func (mock *userStoreMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserRecord, error) {
	if mock.GetByIDFunc == nil {
		panic("userStoreMock.GetByIDFunc: method is nil but userStore.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *userStoreMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *userStoreMock) ListAll(ctx context.Context) (map[string]uuid.UUID, error) {
	if mock.ListAllFunc == nil {
		panic("userStoreMock.ListAllFunc: method is nil but userStore.ListAll was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockListAll.Lock()
	mock.calls.ListAll = append(mock.calls.ListAll, callInfo)
	mock.lockListAll.Unlock()
	return mock.ListAllFunc(ctx)
}

func (mock *userStoreMock) ListAllCalls() []struct {
	Ctx context.Context
} {
	mock.lockListAll.RLock()
	calls := mock.calls.ListAll
	mock.lockListAll.RUnlock()
	return calls
}
