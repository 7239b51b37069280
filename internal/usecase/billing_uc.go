// File: internal/usecase/billing_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/ports/repository"
	"video-subtitle-translator/internal/infra/metrics"
)

// Compile-time check
var _ BillingUseCase = (*billingUC)(nil)

type BillingUseCase interface {
	// CostCents computes the price for a translated character count:
	// unit price per 100 characters, rounded half-up to whole cents.
	CostCents(chars int) int64
	// Debit atomically decrements the user's balance. It fails with
	// domain.ErrInvalidArgument for non-positive amounts, domain.ErrNotFound
	// for a missing user and domain.ErrInsufficientBalance when the balance
	// cannot cover the amount. Never retried.
	Debit(ctx context.Context, userID string, amountCents int64) error
}

type billingUC struct {
	users          repository.UserRepository
	tm             repository.TransactionManager
	unitPriceCents int64
	log            *zerolog.Logger
}

func NewBillingUseCase(users repository.UserRepository, tm repository.TransactionManager, unitPriceCents int64, logger *zerolog.Logger) *billingUC {
	billLog := logger.With().Str("component", "BillingUC").Logger()
	return &billingUC{users: users, tm: tm, unitPriceCents: unitPriceCents, log: &billLog}
}

func (b *billingUC) CostCents(chars int) int64 {
	if chars <= 0 {
		return 0
	}
	// cost = chars / 100 * unit price, half-up at the cent.
	return (int64(chars)*b.unitPriceCents + 50) / 100
}

func (b *billingUC) Debit(ctx context.Context, userID string, amountCents int64) error {
	if amountCents <= 0 {
		return domain.ErrInvalidArgument
	}
	err := b.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		u, err := b.users.FindByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := u.Debit(amountCents); err != nil {
			return err
		}
		return b.users.UpdateBalance(ctx, tx, u.ID, u.BalanceCents)
	})
	switch {
	case err == nil:
		metrics.IncDebit("success")
		metrics.AddDebitedCents(amountCents)
		b.log.Info().Str("user_id", userID).Int64("amount_cents", amountCents).Msg("balance debited")
		return nil
	case errors.Is(err, domain.ErrInsufficientBalance):
		metrics.IncDebit("insufficient")
		return err
	default:
		metrics.IncDebit("error")
		return err
	}
}
