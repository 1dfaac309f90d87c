package service_test

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

var seedSeq int64

// seedTime hands out strictly increasing timestamps so created_at tie-breaks
// order deterministically.
func seedTime() time.Time {
	n := atomic.AddInt64(&seedSeq, 1)
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second)
}

func newLedger(store *memory.Store) service.LedgerService {
	return service.NewLedgerService(store.Transactions(), 1000, zerolog.Nop())
}

func seedGroup(store *memory.Store, name string) models.Group {
	g := models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: seedTime(),
	}
	store.AddGroup(g)
	return g
}

func seedTeacher(store *memory.Store, name string) models.User {
	u := models.User{
		ID:           uuid.NewString(),
		Role:         models.RoleTeacher,
		Name:         name,
		Login:        "t_" + uuid.NewString()[:8],
		PasswordHash: "x",
		TotalCoins:   decimal.Zero,
		IsActive:     true,
		CreatedAt:    seedTime(),
	}
	store.AddUser(u)
	return u
}

func seedStudent(store *memory.Store, name string, groupID *string, coins decimal.Decimal) models.User {
	u := models.User{
		ID:           uuid.NewString(),
		Role:         models.RoleStudent,
		Name:         name,
		Login:        "s_" + uuid.NewString()[:8],
		PasswordHash: "x",
		GroupID:      groupID,
		TotalCoins:   coins,
		AvatarIcon:   "robot1",
		AvatarColor:  "blue",
		IsActive:     true,
		CreatedAt:    seedTime(),
	}
	store.AddUser(u)
	return u
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }
