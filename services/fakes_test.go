package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
)

// In-memory stores mirroring the repository semantics, including the unique
// indexes and conditional updates the services lean on.

func newObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (f *fakeUserStore) add(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode != "" && u.ReferralCode == code {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByParent(ctx context.Context, parentID primitive.ObjectID) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.ParentCoordinatorID != nil && *u.ParentCoordinatorID == parentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Insert(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Status = status
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) Activate(ctx context.Context, id primitive.ObjectID, parentID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Status != models.StatusPending {
		return repositories.ErrConflict
	}
	u.Status = models.StatusActive
	u.ParentCoordinatorID = &parentID
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SetReferralCode(ctx context.Context, id primitive.ObjectID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ReferralCode = code
	f.users[id] = u
	return nil
}

type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[primitive.ObjectID]models.ReferralCode
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[primitive.ObjectID]models.ReferralCode)}
}

func (f *fakeCodeStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.OwnerUserID == ownerID {
			c := c
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCodeStore) FindByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.Code == code {
			c := c
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCodeStore) Insert(ctx context.Context, code *models.ReferralCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Unique indexes on code and ownerUserId
	for _, c := range f.codes {
		if c.Code == code.Code || c.OwnerUserID == code.OwnerUserID {
			return repositories.ErrDuplicateKey
		}
	}
	if code.ID.IsZero() {
		code.ID = primitive.NewObjectID()
	}
	f.codes[code.ID] = *code
	return nil
}

func (f *fakeCodeStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Active = false
	f.codes[id] = c
	return nil
}

func (f *fakeCodeStore) IncrementUsage(ctx context.Context, id primitive.ObjectID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.TotalDonations++
	c.TotalAmount += amount
	f.codes[id] = c
	return nil
}

func (f *fakeCodeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes)
}

type fakeDonationStore struct {
	mu        sync.Mutex
	donations map[primitive.ObjectID]models.Donation
}

func newFakeDonationStore() *fakeDonationStore {
	return &fakeDonationStore{donations: make(map[primitive.ObjectID]models.Donation)}
}

func (f *fakeDonationStore) add(d models.Donation) models.Donation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	f.donations[d.ID] = d
	return d
}

func (f *fakeDonationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDonationStore) FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.donations {
		if d.GatewayOrderID == orderID {
			d := d
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeDonationStore) Insert(ctx context.Context, donation *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	f.donations[donation.ID] = *donation
	return nil
}

func (f *fakeDonationStore) MarkPaymentResult(ctx context.Context, id primitive.ObjectID, status, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if d.PaymentStatus != models.PaymentStatusPending {
		return repositories.ErrConflict
	}
	d.PaymentStatus = status
	d.GatewayPaymentID = paymentID
	f.donations[id] = d
	return nil
}

func (f *fakeDonationStore) MarkDistributed(ctx context.Context, id primitive.ObjectID, totalCommission, orgFund int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if d.Distributed || d.PaymentStatus != models.PaymentStatusSuccess {
		return repositories.ErrConflict
	}
	d.Distributed = true
	d.DistributedAt = &at
	d.TotalCommissionDistributed = totalCommission
	d.OrganizationFundAmount = orgFund
	f.donations[id] = d
	return nil
}

func (f *fakeDonationStore) ListByAttributed(ctx context.Context, userIDs []primitive.ObjectID, page, limit int) ([]models.Donation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idSet := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		idSet[id] = true
	}
	var out []models.Donation
	for _, d := range f.donations {
		if d.AttributedTo != nil && idSet[*d.AttributedTo] {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

type fakeCommissionStore struct {
	mu   sync.Mutex
	logs []models.CommissionLog
}

func newFakeCommissionStore() *fakeCommissionStore {
	return &fakeCommissionStore{}
}

func (f *fakeCommissionStore) InsertMany(ctx context.Context, logs []models.CommissionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Unique (donationId, userId) index
	for _, l := range logs {
		for _, existing := range f.logs {
			if existing.DonationID == l.DonationID && existing.UserID == l.UserID {
				return repositories.ErrDuplicateKey
			}
		}
	}
	for _, l := range logs {
		if l.ID.IsZero() {
			l.ID = primitive.NewObjectID()
		}
		f.logs = append(f.logs, l)
	}
	return nil
}

func (f *fakeCommissionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CommissionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.logs {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCommissionStore) FindByDonation(ctx context.Context, donationID primitive.ObjectID) ([]models.CommissionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CommissionLog
	for _, l := range f.logs {
		if l.DonationID == donationID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCommissionStore) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID, paymentMethod string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.logs {
		if l.ID == id {
			if l.Paid {
				return repositories.ErrConflict
			}
			now := time.Now()
			f.logs[i].Paid = true
			f.logs[i].PaidAt = &now
			f.logs[i].TransactionID = transactionID
			f.logs[i].PaymentMethod = paymentMethod
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeCommissionStore) ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.CommissionLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CommissionLog
	for _, l := range f.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCommissionStore) SummaryForUser(ctx context.Context, userID primitive.ObjectID) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var earned, paid int64
	for _, l := range f.logs {
		if l.UserID == userID {
			earned += l.Amount
			if l.Paid {
				paid += l.Amount
			}
		}
	}
	return earned, paid, nil
}

func (f *fakeCommissionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}
