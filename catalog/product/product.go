package product

import (
	"context"

	"github.com/viant/lifecycle/factory"
	"github.com/viant/lifecycle/key"
)

const Kind = "product"

var (
	A = key.Named(Kind, "a")
	B = key.Named(Kind, "b")
)

// Product represents a product capability
type Product interface {
	Operation() string
}

type productA struct{}

func (p *productA) Operation() string { return "Result of Concrete Product A" }

type productB struct{}

func (p *productB) Operation() string { return "Result of Concrete Product B" }

// Creator uses a product without knowing its concrete type
type Creator struct {
	registry *factory.Registry[Product]
	selector key.Key
}

// SomeOperation creates a product and reports its operation
func (c *Creator) SomeOperation(ctx context.Context) (string, error) {
	aProduct, err := c.registry.Create(ctx, c.selector)
	if err != nil {
		return "", err
	}
	return "Creator: use " + aProduct.Operation(), nil
}

// NewCreator creates a creator bound to a product selector
func NewCreator(registry *factory.Registry[Product], selector key.Key) *Creator {
	return &Creator{registry: registry, selector: selector}
}

// Register registers built-in products
func Register(registry *factory.Registry[Product]) error {
	if err := registry.Register(A, func(ctx context.Context, args ...interface{}) (Product, error) {
		return &productA{}, nil
	}, factory.WithDoc("concrete product A")); err != nil {
		return err
	}
	return registry.Register(B, func(ctx context.Context, args ...interface{}) (Product, error) {
		return &productB{}, nil
	}, factory.WithDoc("concrete product B"))
}
