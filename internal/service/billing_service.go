package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/product"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/config"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/events"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// ProductInfo is a pricing plan exposed to clients.
type ProductInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Prices      []PriceInfo `json:"prices"`
}

// PriceInfo is one price attached to a plan.
type PriceInfo struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
}

// BillingService integrates the Stripe billing provider. The invoice webhook
// is the external event that first qualifies a user for a ledger account.
type BillingService struct {
	users      repository.UserRepository
	subs       repository.SubscriptionRepository
	ledger     *LedgerService
	dispatcher events.Dispatcher
	cfg        config.BillingConfig
	logger     *zap.Logger
}

// NewBillingService builds the service and configures the Stripe client key.
func NewBillingService(users repository.UserRepository, subs repository.SubscriptionRepository, ledger *LedgerService, dispatcher events.Dispatcher, cfg config.BillingConfig, logger *zap.Logger) *BillingService {
	stripe.Key = cfg.StripeSecretKey
	return &BillingService{
		users:      users,
		subs:       subs,
		ledger:     ledger,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Products lists active pricing plans with their prices.
func (s *BillingService) Products(_ context.Context) ([]ProductInfo, error) {
	result := []ProductInfo{}

	productIter := product.List(&stripe.ProductListParams{Active: stripe.Bool(true)})
	for productIter.Next() {
		p := productIter.Product()

		prices := []PriceInfo{}
		priceIter := price.List(&stripe.PriceListParams{
			Product: stripe.String(p.ID),
			Active:  stripe.Bool(true),
		})
		for priceIter.Next() {
			pr := priceIter.Price()
			info := PriceInfo{
				ID:         pr.ID,
				UnitAmount: pr.UnitAmount,
				Currency:   string(pr.Currency),
			}
			if pr.Recurring != nil {
				info.Interval = string(pr.Recurring.Interval)
			}
			prices = append(prices, info)
		}
		if err := priceIter.Err(); err != nil {
			return nil, apperrors.NewUnavailable("failed to fetch prices", err)
		}

		result = append(result, ProductInfo{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Prices:      prices,
		})
	}
	if err := productIter.Err(); err != nil {
		return nil, apperrors.NewUnavailable("failed to fetch products", err)
	}
	return result, nil
}

// CreateCheckoutSession starts a subscription checkout for the user.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, priceID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.NewNotFound("user", nil)
		}
		return "", apperrors.MapError(err)
	}

	checkout, err := session.New(&stripe.CheckoutSessionParams{
		CustomerEmail: stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.ApplicationURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.ApplicationURL + "/cancel"),
	})
	if err != nil {
		return "", apperrors.NewUnavailable("failed to create checkout session", err)
	}
	return checkout.URL, nil
}

// HandleWebhook verifies the provider signature and applies the event.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.StripeWebhookSecret)
	if err != nil {
		return apperrors.NewValidationError("invalid webhook signature", nil)
	}

	switch event.Type {
	case "invoice.paid":
		return s.handleInvoicePaid(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *BillingService) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return apperrors.NewValidationError("malformed invoice payload", nil)
	}
	if invoice.CustomerEmail == "" {
		return nil
	}

	user, err := s.users.GetByEmail(ctx, invoice.CustomerEmail)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.logger.Warn("invoice for unknown customer", zap.String("email", invoice.CustomerEmail))
			return nil
		}
		return apperrors.MapError(err)
	}

	sourceID := ""
	if invoice.Subscription != nil {
		sourceID = invoice.Subscription.ID
	}
	startedAt, endedAt := invoicePeriod(&invoice)

	sub := &domain.Subscription{
		UserID:    user.ID,
		SourceID:  sourceID,
		Currency:  string(invoice.Currency),
		Amount:    invoice.AmountPaid,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Status:    domain.SubscriptionStatusActive,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return apperrors.MapError(err)
	}

	// A paid invoice is what first qualifies the user for a ledger account.
	if _, err := s.ledger.EnsureAccount(ctx, user.ID, string(invoice.Currency)); err != nil {
		return err
	}

	_ = s.dispatcher.Publish(ctx, events.New(events.EventSubscriptionActivated, sub.ID.String(),
		events.SubscriptionActivatedPayload{
			UserID:   user.ID,
			SourceID: sourceID,
			Amount:   sub.Amount,
			Currency: sub.Currency,
		}))
	return nil
}

func (s *BillingService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return apperrors.NewValidationError("malformed subscription payload", nil)
	}

	sub, err := s.subs.GetBySourceID(ctx, stripeSub.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return apperrors.MapError(err)
	}

	cancelled := domain.SubscriptionStatusCancelled
	if _, err := s.subs.ApplyPatch(ctx, sub.ID, domain.SubscriptionPatch{Status: &cancelled}); err != nil {
		return apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.New(events.EventSubscriptionCanceled, sub.ID.String(),
		events.SubscriptionCanceledPayload{SourceID: stripeSub.ID}))
	return nil
}

func invoicePeriod(invoice *stripe.Invoice) (time.Time, time.Time) {
	now := time.Now()
	started, ended := now, now
	if invoice.Lines != nil && len(invoice.Lines.Data) > 0 {
		if period := invoice.Lines.Data[0].Period; period != nil {
			started = time.Unix(period.Start, 0)
			ended = time.Unix(period.End, 0)
		}
	}
	return started, ended
}
