// Package memory holds map-backed implementations of the repository
// interfaces. Service and handler tests run against a Store instead of
// PostgreSQL; every repository built from the same Store shares one state,
// so cross-repo effects (ledger writes moving balances, cascade deletes)
// behave like they do against the real schema.
package memory

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	users        map[string]*models.User
	generated    map[string]*string // plaintext generated passwords
	groups       map[string]*models.Group
	transactions []models.CoinTransaction
	attendance   []models.AttendanceRecord
	assignments  map[string]*models.Assignment
	submissions  map[string]*models.Submission
	rewards      map[string]*models.Reward
	shop         *models.ShopSettings
	messages     []models.Message
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		generated:   make(map[string]*string),
		groups:      make(map[string]*models.Group),
		assignments: make(map[string]*models.Assignment),
		submissions: make(map[string]*models.Submission),
		rewards:     make(map[string]*models.Reward),
	}
}

func (s *Store) Users() repository.UserRepository               { return &userRepo{s} }
func (s *Store) Groups() repository.GroupRepository             { return &groupRepo{s} }
func (s *Store) Transactions() repository.TransactionRepository { return &transactionRepo{s} }
func (s *Store) Attendance() repository.AttendanceRepository    { return &attendanceRepo{s} }
func (s *Store) Assignments() repository.AssignmentRepository   { return &assignmentRepo{s} }
func (s *Store) Submissions() repository.SubmissionRepository   { return &submissionRepo{s} }
func (s *Store) Rewards() repository.RewardRepository           { return &rewardRepo{s} }
func (s *Store) Shop() repository.ShopRepository                { return &shopRepo{s} }
func (s *Store) Messages() repository.MessageRepository         { return &messageRepo{s} }

// Seeding helpers. Tests use these to set up state directly, bypassing the
// service layer.

func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.ID] = &cp
}

func (s *Store) AddGroup(g models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := g
	s.groups[g.ID] = &cp
}

func (s *Store) AddReward(rw models.Reward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := rw
	s.rewards[rw.ID] = &cp
}

func (s *Store) AddAssignment(a models.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a
	cp.GroupIDs = append([]string(nil), a.GroupIDs...)
	s.assignments[a.ID] = &cp
}

func (s *Store) AddSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sub
	s.submissions[sub.ID] = &cp
}

func (s *Store) SetShop(settings models.ShopSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := settings
	s.shop = &cp
}

// AddTransaction appends a ledger row without touching the cached balance,
// like an out-of-band INSERT would. Pair with SetBalance to fabricate drift.
func (s *Store) AddTransaction(tx models.CoinTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
}

// SetBalance overwrites the cached balance directly, bypassing the ledger.
func (s *Store) SetBalance(studentID string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[studentID]; ok {
		u.TotalCoins = balance
	}
}
