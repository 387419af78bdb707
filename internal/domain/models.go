package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Money is an amount in cents.
type Money int64

// ParseMoney accepts "12.99", "12.9", "12" or "$12.99".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, fmt.Errorf("money: empty amount")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("money: bad amount %q", s)
	}
	if !digits(whole) || (hasFrac && !digits(frac)) {
		return 0, fmt.Errorf("money: bad amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > math.MaxInt64/100-1 {
		return 0, fmt.Errorf("money: bad amount %q", s)
	}
	var f int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		f, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Money(w*100 + f), nil
}

func digits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
}

func (m Money) Float() float64 { return float64(m) / 100 }

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.String()), nil }

func (m *Money) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseMoney(n.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type Product struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Price       Money  `yaml:"price" json:"price"`
	Image       string `yaml:"image" json:"image"`
	Description string `yaml:"description" json:"description"`
}

type Address struct {
	Street string `yaml:"street" json:"street"`
	City   string `yaml:"city" json:"city"`
	State  string `yaml:"state" json:"state"`
	Zip    string `yaml:"zip" json:"zip"`
}

type ContactInfo struct {
	Phone   string  `yaml:"phone" json:"phone"`
	Email   string  `yaml:"email" json:"email"`
	Address Address `yaml:"address" json:"address"`
}

type Testimonial struct {
	Name     string `yaml:"name" json:"customer_name"`
	Location string `yaml:"location" json:"location"`
	Rating   int    `yaml:"rating" json:"rating"`
	Text     string `yaml:"text" json:"comment"`
	Avatar   string `yaml:"avatar" json:"avatar,omitempty"`
	Featured bool   `yaml:"featured" json:"featured"`
}

// ContactSubmission is an accepted contact form message. It is relayed, not stored.
type ContactSubmission struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	Newsletter bool      `json:"newsletter"`
	Status     string    `json:"status"` // new
	CreatedAt  time.Time `json:"created_at"`
}

type Subscription struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Subscribed bool   `json:"subscribed"`
}

type AnalyticsEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"event"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

type SiteStats struct {
	HappyFamilies     int64   `json:"happy_families"`
	Countries         int     `json:"countries"`
	OrganicPercentage int     `json:"organic_percentage"`
	ProductsAvailable int     `json:"products_available"`
	TotalReviews      int     `json:"total_reviews"`
	Contacts          int64   `json:"contact_submissions"`
	Subscribers       int64   `json:"newsletter_subscribers"`
	AverageRating     float64 `json:"average_rating"`
	YearsOfExperience int     `json:"years_of_experience"`
}
