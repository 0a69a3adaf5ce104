package payment

import "context"

// Links opens payments across the two provider channels.
type Links struct {
	card   *YooKassaClient
	crypto *OxaClient
}

// NewLinks bundles the provider clients for payment creation.
func NewLinks(card *YooKassaClient, crypto *OxaClient) *Links {
	return &Links{card: card, crypto: crypto}
}

func (l *Links) CreateCardPayment(ctx context.Context, cost int, description string) (Link, error) {
	return l.card.CreatePayment(ctx, cost, description)
}

func (l *Links) CreateCryptoPayment(ctx context.Context, cost int) (Link, error) {
	return l.crypto.CreatePayment(ctx, cost)
}
