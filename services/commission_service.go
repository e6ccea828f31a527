// services/commission_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/config"
	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
)

// Distribution is one beneficiary's computed share.
type Distribution struct {
	UserID primitive.ObjectID `json:"userId"`
	Amount int64              `json:"amount"`
	Level  int                `json:"level"`
}

// DistributionResult is the outcome of a successful Distribute call.
// Invariant: TotalCommission + OrganizationFund == donation amount, exactly.
type DistributionResult struct {
	DonationID       primitive.ObjectID `json:"donationId"`
	TotalCommission  int64              `json:"totalCommission"`
	OrganizationFund int64              `json:"organizationFund"`
	Distributions    []Distribution     `json:"distributions"`
	Summary          string             `json:"summary"`
}

// CommissionService walks the attributed user's ancestor chain and records
// the per-level commission split for a successful donation, exactly once.
type CommissionService struct {
	users     repositories.UserStore
	donations repositories.DonationStore
	logs      repositories.CommissionLogStore
	cfg       config.CommissionConfig
}

func NewCommissionService(users repositories.UserStore, donations repositories.DonationStore, logs repositories.CommissionLogStore, cfg config.CommissionConfig) *CommissionService {
	return &CommissionService{users: users, donations: donations, logs: logs, cfg: cfg}
}

// Distribute computes and persists the commission split for a donation.
// Preconditions are checked, not assumed; each violation has its own error.
// The distributed flag flips through a conditional update, so of two
// concurrent calls exactly one succeeds and the other observes
// ErrAlreadyDistributed.
func (s *CommissionService) Distribute(ctx context.Context, donationID primitive.ObjectID) (*DistributionResult, error) {
	donation, err := s.donations.FindByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}

	if donation.Distributed {
		return nil, ErrAlreadyDistributed
	}
	if donation.PaymentStatus != models.PaymentStatusSuccess {
		return nil, ErrNotSuccessful
	}
	if donation.AttributedTo == nil {
		return nil, ErrUnattributed
	}

	chain, err := s.ancestorChain(ctx, *donation.AttributedTo)
	if err != nil {
		return nil, err
	}

	distributions := make([]Distribution, 0, len(chain))
	var totalCommission int64
	for level, userID := range chain {
		amount := s.cfg.LevelAmount(donation.Amount, level)
		if amount <= 0 {
			continue
		}
		distributions = append(distributions, Distribution{
			UserID: userID,
			Amount: amount,
			Level:  level,
		})
		totalCommission += amount
	}

	// Rounding is absorbed here, keeping the fund non-negative because the
	// rate table is validated to sum at most 100%
	orgFund := donation.Amount - totalCommission
	if orgFund < 0 {
		return nil, fmt.Errorf("commission split exceeds donation amount for %s", donationID.Hex())
	}

	// Logs first, flag second. If the log write fails the flag never flips
	// and the whole call can simply be retried; the unique (donationId,
	// userId) index turns a retry that re-inserts rows already written by a
	// crashed attempt into a duplicate key, which is the same outcome.
	entries := make([]models.CommissionLog, 0, len(distributions))
	for _, d := range distributions {
		entries = append(entries, models.CommissionLog{
			DonationID: donationID,
			UserID:     d.UserID,
			Amount:     d.Amount,
			Level:      d.Level,
		})
	}
	if err := s.logs.InsertMany(ctx, entries); err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
		return nil, err
	}

	err = s.donations.MarkDistributed(ctx, donationID, totalCommission, orgFund, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrAlreadyDistributed
		}
		return nil, err
	}

	return &DistributionResult{
		DonationID:       donationID,
		TotalCommission:  totalCommission,
		OrganizationFund: orgFund,
		Distributions:    distributions,
		Summary: fmt.Sprintf("distributed %d paise across %d levels, %d paise to organization fund",
			totalCommission, len(distributions), orgFund),
	}, nil
}

// MarkCommissionPaid records the payout of a single commission entry.
func (s *CommissionService) MarkCommissionPaid(ctx context.Context, logID primitive.ObjectID, transactionID, paymentMethod string) error {
	err := s.logs.MarkPaid(ctx, logID, transactionID, paymentMethod)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCommissionLogNotFound
	}
	if errors.Is(err, repositories.ErrConflict) {
		return ErrAlreadyPaid
	}
	return err
}

// ancestorChain walks parentCoordinatorId from the attributed user upward,
// bounded by the rate table length and the configured depth ceiling. The
// attributed user themself must exist; a broken link higher up just ends the
// chain.
func (s *CommissionService) ancestorChain(ctx context.Context, start primitive.ObjectID) ([]primitive.ObjectID, error) {
	maxLevels := s.cfg.Levels()
	if maxLevels > s.cfg.MaxChainDepth {
		maxLevels = s.cfg.MaxChainDepth
	}

	visited := make(map[primitive.ObjectID]bool, maxLevels)
	chain := make([]primitive.ObjectID, 0, maxLevels)
	current := start

	for len(chain) < maxLevels {
		if visited[current] {
			log.Printf("ALERT: cycle detected in ancestor chain at user %s", current.Hex())
			return nil, ErrCycleDetected
		}
		visited[current] = true

		user, err := s.users.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				if len(chain) == 0 {
					return nil, ErrUserNotFound
				}
				log.Printf("Warning: broken parent link at user %s, ending chain", current.Hex())
				break
			}
			return nil, err
		}

		chain = append(chain, user.ID)

		if user.ParentCoordinatorID == nil {
			break
		}
		current = *user.ParentCoordinatorID
	}

	return chain, nil
}
