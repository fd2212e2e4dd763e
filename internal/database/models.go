package database

import (
	"database/sql"
	"strings"
	"time"
)

// Tone values inferred from a customer's comments.
const (
	ToneNeutral      = "neutral"
	ToneEnthusiastic = "enthusiastic"
	ToneConcerned    = "concerned"
)

// RegularCustomerThreshold is the interaction count at which a customer is
// flagged as a regular. The flag never reverts once set.
const RegularCustomerThreshold = 3

// Customer represents one commenter identity, keyed by platform username.
// It accumulates interaction history, an inferred tone, preferred products
// derived from keyword mentions, and a loyalty flag.
type Customer struct {
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Tone              string       `db:"tone"`
	Regular           bool         `db:"regular"`
	PreferredProducts string       `db:"preferred_products"` // comma-joined
	LastInteraction   sql.NullTime `db:"last_interaction"`
	InteractionCount  int          `db:"interaction_count"`
}

// Products returns the customer's preferred products as a slice.
func (c *Customer) Products() []string {
	if c.PreferredProducts == "" {
		return nil
	}
	return strings.Split(c.PreferredProducts, ",")
}

// addProduct appends a product to the preferred set if not already present.
func (c *Customer) addProduct(product string) {
	if product == "" {
		return
	}
	for _, p := range c.Products() {
		if p == product {
			return
		}
	}
	if c.PreferredProducts == "" {
		c.PreferredProducts = product
	} else {
		c.PreferredProducts += "," + product
	}
}

// Interaction is one recorded exchange with a customer: their comment and
// the reply we posted.
type Interaction struct {
	ID        uint      `db:"id"`
	Username  string    `db:"username"`
	Comment   string    `db:"comment"`
	Product   string    `db:"product_context"`
	Reply     string    `db:"reply"`
	CreatedAt time.Time `db:"created_at"`
}

// Keyword lists driving tone classification. A comment containing a positive
// keyword sets the tone to enthusiastic, a negative keyword to concerned;
// otherwise the previous tone stands (last-write-wins, not an aggregate).
var (
	positiveToneWords = []string{"love", "delicious", "amazing", "yummy", "best", "great", "awesome"}
	negativeToneWords = []string{"disappointed", "bad", "worst", "not good", "terrible", "poor"}
)

// ClassifyTone derives the new tone from the latest comment, falling back to
// the previous tone when no keyword matches.
func ClassifyTone(previous, comment string) string {
	lower := strings.ToLower(comment)
	for _, w := range positiveToneWords {
		if strings.Contains(lower, w) {
			return ToneEnthusiastic
		}
	}
	for _, w := range negativeToneWords {
		if strings.Contains(lower, w) {
			return ToneConcerned
		}
	}
	if previous == "" {
		return ToneNeutral
	}
	return previous
}
