package services

import (
	"strings"

	"review-importer/models"
)

// Canonical topic names.
const (
	TopicProductQuality  = "Product Quality"
	TopicCustomerService = "Customer Service"
	TopicShipping        = "Shipping & Delivery"
	TopicPricing         = "Pricing & Value"
	TopicUserExperience  = "User Experience"
	TopicWebsite         = "Website & App"
	TopicPayment         = "Payment & Billing"
	TopicCommunication   = "Communication"
	TopicFood            = "Food & Beverage"
	TopicAtmosphere      = "Atmosphere & Location"
)

// DefaultTaxonomy returns the built-in topic taxonomy.
func DefaultTaxonomy() models.TopicTaxonomy {
	return models.TopicTaxonomy{
		{Name: TopicProductQuality, Keywords: []string{
			"product quality", "quality", "durability", "durable", "material", "broke",
			"broken", "damaged", "defective", "defect", "craftsmanship", "product",
		}},
		{Name: TopicCustomerService, Keywords: []string{
			"customer service", "service", "support", "staff", "representative", "help",
			"assistance", "employee", "rude", "manager", "waiter", "waitress",
		}},
		{Name: TopicShipping, Keywords: []string{
			"shipping", "delivery", "delivered", "shipment", "arrive", "arrived",
			"package", "packaging", "courier", "tracking",
		}},
		{Name: TopicPricing, Keywords: []string{
			"pricing", "price", "cost", "expensive", "cheap", "afford", "value",
			"money", "overpriced", "discount", "worth",
		}},
		{Name: TopicUserExperience, Keywords: []string{
			"user experience", "usability", "easy to use", "user friendly", "intuitive",
			"confusing", "interface", "navigation",
		}},
		{Name: TopicWebsite, Keywords: []string{
			"website", "web site", "mobile app", "application", "online", "checkout",
			"login", "browser",
		}},
		{Name: TopicPayment, Keywords: []string{
			"payment", "billing", "invoice", "refund", "charged", "charge",
			"credit card", "transaction",
		}},
		{Name: TopicCommunication, Keywords: []string{
			"communication", "response time", "responsive", "email", "phone call",
			"contact", "reply", "follow up", "informed",
		}},
		{Name: TopicFood, Keywords: []string{
			"food", "meal", "dish", "taste", "flavor", "drink", "coffee", "menu",
			"pizza", "breakfast", "dinner", "lunch",
		}},
		{Name: TopicAtmosphere, Keywords: []string{
			"atmosphere", "ambiance", "ambience", "location", "decor", "cleanliness",
			"clean", "noisy", "noise", "parking",
		}},
	}
}

// fuzzyRule maps a phrase mentioning one of the adjectives together with one
// of the noun stems to a topic.
type fuzzyRule struct {
	adjectives []string
	stems      []string
	topic      string
}

var qualityAdjectives = []string{
	"bad", "poor", "slow", "fast", "quick", "great", "good", "terrible", "awful",
	"excellent", "amazing", "horrible", "rude", "friendly", "high", "low", "late",
}

func defaultFuzzyRules() []fuzzyRule {
	return []fuzzyRule{
		{qualityAdjectives, []string{"serv", "staff", "suppor"}, TopicCustomerService},
		{qualityAdjectives, []string{"deliver", "ship", "arriv"}, TopicShipping},
		{qualityAdjectives, []string{"pric", "cost", "valu"}, TopicPricing},
		{qualityAdjectives, []string{"qualit", "produc", "mater"}, TopicProductQuality},
		{qualityAdjectives, []string{"tast", "foo", "mea"}, TopicFood},
		{qualityAdjectives, []string{"webs", "site", "mobile"}, TopicWebsite},
	}
}

// minReverseMatch is the shortest phrase looked up inside longer keywords.
const minReverseMatch = 3

type indexEntry struct {
	keyword string
	topic   string
}

// TopicNormalizer maps free-text topic phrases onto a taxonomy. It is
// read-only after construction and safe for concurrent use.
type TopicNormalizer struct {
	taxonomy models.TopicTaxonomy
	index    map[string]string
	ordered  []indexEntry
	rules    []fuzzyRule
}

// NewTopicNormalizer builds the keyword index for the given taxonomy.
func NewTopicNormalizer(taxonomy models.TopicTaxonomy) *TopicNormalizer {
	n := &TopicNormalizer{
		taxonomy: taxonomy,
		index:    make(map[string]string),
		rules:    defaultFuzzyRules(),
	}
	add := func(keyword, topic string) {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			return
		}
		if _, dup := n.index[k]; dup {
			return
		}
		n.index[k] = topic
		n.ordered = append(n.ordered, indexEntry{keyword: k, topic: topic})
	}
	for _, def := range taxonomy {
		add(def.Name, def.Name)
		for _, kw := range def.Keywords {
			add(kw, def.Name)
		}
	}
	return n
}

// Taxonomy returns the taxonomy the normalizer was built from.
func (n *TopicNormalizer) Taxonomy() models.TopicTaxonomy {
	return n.taxonomy
}

// Normalize maps each phrase to a canonical topic. Unmatched phrases are
// dropped and duplicates collapse, keeping first-match order.
func (n *TopicNormalizer) Normalize(phrases []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, p := range phrases {
		topic, ok := n.match(p)
		if !ok {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}

func (n *TopicNormalizer) match(phrase string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return "", false
	}
	if topic, ok := n.index[p]; ok {
		return topic, true
	}
	for _, e := range n.ordered {
		if strings.Contains(p, e.keyword) || (len(p) >= minReverseMatch && strings.Contains(e.keyword, p)) {
			return e.topic, true
		}
	}
	for _, r := range n.rules {
		if containsAny(p, r.adjectives) && containsAny(p, r.stems) {
			return r.topic, true
		}
	}
	return "", false
}

// Detect returns the topics whose keywords occur in text, in taxonomy order.
func (n *TopicNormalizer) Detect(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, def := range n.taxonomy {
		for _, kw := range def.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				out = append(out, def.Name)
				break
			}
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
