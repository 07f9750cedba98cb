package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/use-agent/pricewatch/models"
)

// OtherThreshold is the buy price above which an unmatched row is still
// reported, under CategoryOther.
const OtherThreshold = 100.0

type keywordGroup struct {
	category models.Category
	keywords []string
}

// rowRules is evaluated in order. Currency and silver come before gold
// because the gold list is broad ("ons", "has", "tam").
var rowRules = []keywordGroup{
	{models.CategoryCurrency, []string{"dolar", "euro", "sterlin", "frank", "usd", "eur", "gbp", "chf"}},
	{models.CategorySilver, []string{"gümüş", "gumus", "silver"}},
	{models.CategoryGold, []string{
		"altın", "altin", "çeyrek", "ceyrek", "yarım", "yarim", "tam", "ata",
		"reşat", "resat", "cumhuriyet", "gremse", "ons", "has", "gram",
		"22 ayar", "14 ayar", "bilezik",
	}},
}

// cardRules is the narrower set used for card entries.
var cardRules = []keywordGroup{
	{models.CategoryGold, []string{"altın", "altin"}},
	{models.CategoryCurrency, []string{"dolar", "euro"}},
}

// Classify assigns a row entry to a category. Names matching no keyword
// land in CategoryOther when buy exceeds OtherThreshold; otherwise ok is
// false and the entry is dropped.
func Classify(name string, buy *float64) (models.Category, bool) {
	if c, ok := match(name, rowRules); ok {
		return c, true
	}
	if buy != nil && *buy > OtherThreshold {
		return models.CategoryOther, true
	}
	return 0, false
}

// ClassifyCard assigns a card entry to Gold or Currency only.
func ClassifyCard(name string) (models.Category, bool) {
	return match(name, cardRules)
}

func match(name string, rules []keywordGroup) (models.Category, bool) {
	forms := lowerForms(name)
	for _, g := range rules {
		for _, kw := range g.keywords {
			for _, f := range forms {
				if strings.Contains(f, kw) {
					return g.category, true
				}
			}
		}
	}
	return 0, false
}

// lowerForms returns the name lower-cased both with Unicode default rules
// and Turkish rules, so "ALTIN" reaches "altın" and "SILVER" still reaches
// "silver".
func lowerForms(name string) []string {
	plain := strings.ToLower(name)
	turkish := cases.Lower(language.Turkish).String(name)
	if plain == turkish {
		return []string{plain}
	}
	return []string{plain, turkish}
}
