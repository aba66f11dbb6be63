package service

import (
	"strings"

	"github.com/finoa/finos-backend/internal/domain"
)

// CategoryRule maps a set of keywords to a category. A rule matches when any
// keyword is a substring of the lower-cased text.
type CategoryRule struct {
	Category domain.Category
	Keywords []string
}

// defaultCategoryRules is evaluated in order; the first matching rule wins.
var defaultCategoryRules = []CategoryRule{
	{Category: domain.CategoryFoodDining, Keywords: []string{"grocer", "food", "dining", "restaurant", "eat", "meal"}},
	{Category: domain.CategoryTransport, Keywords: []string{"transport", "uber", "bus", "train", "taxi", "cab", "fuel", "gas"}},
	{Category: domain.CategoryShopping, Keywords: []string{"shop", "purchase", "amazon", "mall", "clothes", "apparel"}},
	{Category: domain.CategoryEntertainment, Keywords: []string{"entertain", "movie", "music", "netflix", "spotify", "fun"}},
	{Category: domain.CategoryBills, Keywords: []string{"bill", "utility", "electric", "water", "internet", "phone"}},
	{Category: domain.CategoryHealthcare, Keywords: []string{"health", "doctor", "pharmacy", "medicine", "hospital"}},
	{Category: domain.CategoryEducation, Keywords: []string{"school", "tuition", "course", "education", "class"}},
	{Category: domain.CategoryTravel, Keywords: []string{"travel", "flight", "hotel", "airbnb", "tour"}},
}

// Classifier maps free text to a spending category
type Classifier struct {
	rules []CategoryRule
}

// NewClassifier creates a Classifier with the default rule table
func NewClassifier() *Classifier {
	return NewClassifierWithRules(defaultCategoryRules)
}

// NewClassifierWithRules creates a Classifier with a custom ordered rule table
func NewClassifierWithRules(rules []CategoryRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category of the first rule that matches text.
// The second return value is false when no rule matches.
func (c *Classifier) Classify(text string) (domain.Category, bool) {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Category, true
			}
		}
	}
	return "", false
}
