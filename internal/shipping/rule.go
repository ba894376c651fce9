package shipping

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"storefront-checkout/internal/domain"
)

// Rule builds a calculator driven by the expressions stored on the
// shipping method itself. The availability rule must evaluate to a
// bool, the cost rule to a number of cents. An empty availability rule
// means always available; an empty cost rule falls back to the
// method's configured price.
func Rule(cart *domain.Cart, method domain.ShippingMethod) (Calculator, error) {
	c := &ruleCalculator{cart: cart, method: method}

	if method.AvailabilityRule != "" {
		program, err := compileRule(method.AvailabilityRule, exprlang.AsBool())
		if err != nil {
			return nil, fmt.Errorf("shipping method %q: availability rule: %w", method.Identifier, err)
		}
		c.availability = program
	}
	if method.CostRule != "" {
		program, err := compileRule(method.CostRule)
		if err != nil {
			return nil, fmt.Errorf("shipping method %q: cost rule: %w", method.Identifier, err)
		}
		c.cost = program
	}
	return c, nil
}

type ruleCalculator struct {
	cart         *domain.Cart
	method       domain.ShippingMethod
	availability *exprvm.Program
	cost         *exprvm.Program
}

func (c *ruleCalculator) Available() bool {
	if c.availability == nil {
		return true
	}
	result, err := exprlang.Run(c.availability, c.environment())
	if err != nil {
		return false
	}
	available, ok := result.(bool)
	return ok && available
}

func (c *ruleCalculator) Cost() (int64, error) {
	if c.cost == nil {
		return c.method.PriceCents, nil
	}
	result, err := exprlang.Run(c.cost, c.environment())
	if err != nil {
		return 0, fmt.Errorf("shipping method %q: cost rule: %w", c.method.Identifier, err)
	}
	return toCents(result)
}

func (c *ruleCalculator) environment() map[string]any {
	return map[string]any{
		"total_cents": c.cart.TotalCents,
		"item_count":  c.cart.ItemCount(),
		"currency":    c.cart.Currency,
		"price_cents": c.method.PriceCents,
	}
}

func compileRule(expression string, options ...exprlang.Option) (*exprvm.Program, error) {
	options = append(options, exprlang.AllowUndefinedVariables())
	return exprlang.Compile(expression, options...)
}

func toCents(result any) (int64, error) {
	switch v := result.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("cost rule returned %T, want a number", result)
	}
}
