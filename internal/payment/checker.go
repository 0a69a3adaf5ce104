package payment

import "context"

// Checker adapts the two provider clients to the status-check collaborator
// consumed by the watcher.
type Checker struct {
	card   *YooKassaClient
	crypto *OxaClient
}

// NewChecker bundles the provider clients.
func NewChecker(card *YooKassaClient, crypto *OxaClient) *Checker {
	return &Checker{card: card, crypto: crypto}
}

func (c *Checker) CheckCardPayment(ctx context.Context, id string) (bool, error) {
	return c.card.CheckPayment(ctx, id)
}

func (c *Checker) CheckCryptoPayment(ctx context.Context, id string) (bool, error) {
	return c.crypto.CheckPayment(ctx, id)
}
