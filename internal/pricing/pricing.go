// Package pricing holds the price list and the discount tier table.
// Everything here is pure: no I/O happens outside Load.
package pricing

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

type Tier struct {
	MinSpent decimal.Decimal `json:"min_spent"`
	Discount int             `json:"discount"`
	Name     string          `json:"name"`
}

type Config struct {
	LinkPrice        decimal.Decimal
	ArticlePrice     decimal.Decimal
	OwnerRate        decimal.Decimal
	RenewalDiscount  int
	MaxTotalDiscount int
	RenewalPeriod    time.Duration
	MaxScheduleAhead time.Duration
	Tiers            []Tier
}

func Default() *Config {
	return &Config{
		LinkPrice:        decimal.NewFromInt(25),
		ArticlePrice:     decimal.NewFromInt(15),
		OwnerRate:        decimal.RequireFromString("0.10"),
		RenewalDiscount:  30,
		MaxTotalDiscount: 60,
		RenewalPeriod:    365 * 24 * time.Hour,
		MaxScheduleAhead: 90 * 24 * time.Hour,
		Tiers: []Tier{
			{MinSpent: decimal.Zero, Discount: 0, Name: "Standard"},
			{MinSpent: decimal.NewFromInt(800), Discount: 10, Name: "Bronze"},
			{MinSpent: decimal.NewFromInt(1200), Discount: 15, Name: "Silver"},
			{MinSpent: decimal.NewFromInt(1600), Discount: 20, Name: "Gold"},
			{MinSpent: decimal.NewFromInt(2000), Discount: 25, Name: "Platinum"},
			{MinSpent: decimal.NewFromInt(2400), Discount: 30, Name: "Diamond"},
		},
	}
}

var (
	ErrInvalidTiers  = errors.New("invalid discount tiers")
	ErrInvalidPrices = errors.New("invalid prices")
)

func (c *Config) Validate() error {
	if len(c.Tiers) == 0 || !c.Tiers[0].MinSpent.IsZero() {
		return fmt.Errorf("%w: first tier must start at 0", ErrInvalidTiers)
	}
	for _, t := range c.Tiers {
		if t.Discount < 0 || t.Discount > 100 {
			return fmt.Errorf("%w: discount %d of tier %q out of 0..100", ErrInvalidTiers, t.Discount, t.Name)
		}
	}
	for i := 1; i < len(c.Tiers); i++ {
		prev, cur := c.Tiers[i-1], c.Tiers[i]
		if !cur.MinSpent.GreaterThan(prev.MinSpent) {
			return fmt.Errorf("%w: min_spent must increase (tier %q)", ErrInvalidTiers, cur.Name)
		}
		if cur.Discount < prev.Discount {
			return fmt.Errorf("%w: discount must not decrease (tier %q)", ErrInvalidTiers, cur.Name)
		}
	}
	for name, price := range map[string]decimal.Decimal{
		"link_price":    c.LinkPrice,
		"article_price": c.ArticlePrice,
		"owner_rate":    c.OwnerRate,
	} {
		if price.IsNegative() {
			return fmt.Errorf("%w: %s is negative (%s)", ErrInvalidPrices, name, price)
		}
	}
	if c.RenewalDiscount < 0 || c.RenewalDiscount > 100 {
		return fmt.Errorf("%w: renewal discount out of range: %d", ErrInvalidPrices, c.RenewalDiscount)
	}
	if c.MaxTotalDiscount < 0 || c.MaxTotalDiscount > 100 {
		return fmt.Errorf("max total discount out of range: %d", c.MaxTotalDiscount)
	}
	if c.RenewalPeriod <= 0 || c.MaxScheduleAhead <= 0 {
		return errors.New("renewal period and schedule window must be positive")
	}
	return nil
}

// TierFor returns the highest tier whose threshold is reached by totalSpent.
func (c *Config) TierFor(totalSpent decimal.Decimal) Tier {
	tier := c.Tiers[0]
	for _, t := range c.Tiers[1:] {
		if totalSpent.LessThan(t.MinSpent) {
			break
		}
		tier = t
	}
	return tier
}

// NextTier returns the first tier above totalSpent, or nil at the top.
func (c *Config) NextTier(totalSpent decimal.Decimal) *Tier {
	for _, t := range c.Tiers {
		if totalSpent.LessThan(t.MinSpent) {
			next := t
			return &next
		}
	}
	return nil
}

func (c *Config) BasePrice(t domain.PlacementType) decimal.Decimal {
	if t == domain.PlacementArticle {
		return c.ArticlePrice
	}
	return c.LinkPrice
}

// Quote is the price computed for one purchase or renewal.
type Quote struct {
	Original decimal.Decimal
	Discount int
	Final    decimal.Decimal
}

// PurchaseQuote applies the buyer discount, or the flat owner rate when the
// buyer owns the site.
func (c *Config) PurchaseQuote(t domain.PlacementType, discount int, ownsSite bool) Quote {
	base := c.BasePrice(t)
	if ownsSite {
		return Quote{Original: base, Discount: 0, Final: c.OwnerRate}
	}
	return Quote{Original: base, Discount: discount, Final: applyDiscount(base, discount)}
}

// RenewalQuote stacks the renewal discount on the personal one, capped at MaxTotalDiscount.
func (c *Config) RenewalQuote(discount int, ownsSite bool) Quote {
	if ownsSite {
		return Quote{Original: c.LinkPrice, Discount: 0, Final: c.OwnerRate}
	}
	total := c.RenewalDiscount + discount
	if total > c.MaxTotalDiscount {
		total = c.MaxTotalDiscount
	}
	return Quote{Original: c.LinkPrice, Discount: total, Final: applyDiscount(c.LinkPrice, total)}
}

var hundred = decimal.NewFromInt(100)

func applyDiscount(base decimal.Decimal, discount int) decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromInt(int64(discount))).Div(hundred)
	return base.Mul(factor).Round(2)
}

type fileTier struct {
	MinSpent string `yaml:"min_spent"`
	Discount int    `yaml:"discount"`
	Name     string `yaml:"name"`
}

type fileConfig struct {
	LinkPrice         string     `yaml:"link_price"`
	ArticlePrice      string     `yaml:"article_price"`
	OwnerRate         string     `yaml:"owner_rate"`
	RenewalDiscount   *int       `yaml:"renewal_discount"`
	MaxTotalDiscount  *int       `yaml:"max_total_discount"`
	RenewalPeriodDays int        `yaml:"renewal_period_days"`
	MaxScheduleDays   int        `yaml:"max_schedule_days"`
	Tiers             []fileTier `yaml:"tiers"`
}

// Load overlays the YAML file at path on top of Default. An empty path returns Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}

	for _, field := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{fc.LinkPrice, &cfg.LinkPrice},
		{fc.ArticlePrice, &cfg.ArticlePrice},
		{fc.OwnerRate, &cfg.OwnerRate},
	} {
		if field.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", field.raw, err)
		}
		*field.dst = v
	}
	if fc.RenewalDiscount != nil {
		cfg.RenewalDiscount = *fc.RenewalDiscount
	}
	if fc.MaxTotalDiscount != nil {
		cfg.MaxTotalDiscount = *fc.MaxTotalDiscount
	}
	if fc.RenewalPeriodDays > 0 {
		cfg.RenewalPeriod = time.Duration(fc.RenewalPeriodDays) * 24 * time.Hour
	}
	if fc.MaxScheduleDays > 0 {
		cfg.MaxScheduleAhead = time.Duration(fc.MaxScheduleDays) * 24 * time.Hour
	}
	if len(fc.Tiers) > 0 {
		tiers := make([]Tier, 0, len(fc.Tiers))
		for _, ft := range fc.Tiers {
			min, err := decimal.NewFromString(ft.MinSpent)
			if err != nil {
				return nil, fmt.Errorf("parse tier %q: %w", ft.Name, err)
			}
			tiers = append(tiers, Tier{MinSpent: min, Discount: ft.Discount, Name: ft.Name})
		}
		cfg.Tiers = tiers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
