package language

import "github.com/custodia-labs/sercha-assist/internal/core/domain"

// typeKeywords associates document types with the query keywords that
// signal interest in them.
var typeKeywords = map[string][]string{
	"services": {"service", "services", "solution", "solutions", "development", "design", "consulting", "خدمات"},
	"courses":  {"course", "courses", "training", "bootcamp", "learn", "certificate", "دورات", "كورسات"},
	"pricing":  {"price", "prices", "pricing", "cost", "costs", "fee", "fees", "discount", "payment", "أسعار"},
	"prices":   {"price", "prices", "pricing", "cost", "costs", "fee", "fees", "discount", "payment", "أسعار"},
	"contact":  {"contact", "phone", "email", "whatsapp", "address", "location", "where", "تواصل"},
	"policy":   {"policy", "policies", "terms", "refund", "cancellation", "guarantee", "سياسة"},
	"faq":      {"faq", "question", "questions", "help", "أسئلة"},
	"company":  {"company", "about", "team", "who", "experience", "الشركة"},
	"about":    {"company", "about", "team", "who", "experience", "الشركة"},
}

// TypeMatches reports whether docType is associated with any keyword in
// the expanded set. Unknown types never match.
func TypeMatches(docType string, ks domain.KeywordSet) bool {
	for _, kw := range typeKeywords[docType] {
		if ks.Has(kw) {
			return true
		}
	}
	return false
}
