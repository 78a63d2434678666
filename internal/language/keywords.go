package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// Synonym groups shared by several dictionary keys.
var (
	pricingTerms = []string{"price", "prices", "pricing", "cost", "costs", "fee", "fees", "سعر", "أسعار", "تكلفة"}
	courseTerms  = []string{"course", "courses", "training", "bootcamp", "دورة", "دورات", "كورس", "كورسات"}
	serviceTerms = []string{"service", "services", "solution", "solutions", "خدمة", "خدمات"}
	contactTerms = []string{"contact", "phone", "email", "whatsapp", "address", "تواصل", "اتصال"}
	policyTerms  = []string{"policy", "policies", "terms", "refund", "cancellation", "سياسة", "شروط"}
	faqTerms     = []string{"faq", "question", "questions", "help", "سؤال", "أسئلة"}
	companyTerms = []string{"company", "about", "team", "who", "شركة", "الشركة"}
)

// dictionary maps normalized Arabic tokens, including Egyptian colloquial
// forms, to their English and cross-dialect synonyms.
var dictionary = map[string][]string{
	// Pricing
	"سعر":     pricingTerms,
	"السعر":   pricingTerms,
	"أسعار":   pricingTerms,
	"الأسعار": pricingTerms,
	"اسعار":   pricingTerms,
	"الاسعار": pricingTerms,
	"تكلفة":   pricingTerms,
	"التكلفة": pricingTerms,
	"بكام":    append([]string{"how much"}, pricingTerms...),
	"كام":     {"how much", "how many", "price", "cost"},
	"فلوس":    {"money", "price", "cost", "payment"},
	"مصاريف":  {"fees", "cost", "expenses", "price"},
	"رسوم":    {"fees", "fee", "cost", "price"},
	"دفع":     {"payment", "pay", "installment", "price"},
	"تقسيط":   {"installment", "installments", "payment", "plan"},
	"خصم":     {"discount", "offer", "promotion", "price"},
	"عروض":    {"offers", "offer", "discount", "promotion"},

	// Courses
	"دورة":      courseTerms,
	"الدورة":    courseTerms,
	"دورات":     courseTerms,
	"الدورات":   courseTerms,
	"كورس":      courseTerms,
	"كورسات":    courseTerms,
	"الكورسات":  courseTerms,
	"تدريب":     courseTerms,
	"التدريب":   courseTerms,
	"تدريبية":   courseTerms,
	"التدريبية": courseTerms,
	"بوتكامب":   {"bootcamp", "course", "training"},
	"شهادة":     {"certificate", "certification", "course"},
	"شهادات":    {"certificates", "certification", "course"},
	"اتعلم":     {"learn", "learning", "course", "training"},
	"تعلم":      {"learn", "learning", "course", "training"},

	// Services
	"خدمة":     serviceTerms,
	"خدمات":    serviceTerms,
	"الخدمات":  serviceTerms,
	"خدماتكم":  serviceTerms,
	"تطوير":    {"development", "develop", "service"},
	"برمجة":    {"programming", "development", "software"},
	"تصميم":    {"design", "ui", "ux", "service"},
	"مواقع":    {"website", "websites", "web", "development"},
	"تطبيقات":  {"app", "apps", "mobile", "application", "development"},
	"استشارات": {"consulting", "consultation", "advice", "service"},

	// Contact
	"تواصل":   contactTerms,
	"التواصل": contactTerms,
	"اتصال":   contactTerms,
	"رقم":     {"number", "phone", "contact"},
	"تليفون":  {"phone", "telephone", "contact"},
	"موبايل":  {"mobile", "phone", "contact"},
	"واتساب":  {"whatsapp", "contact"},
	"ايميل":   {"email", "contact"},
	"إيميل":   {"email", "contact"},
	"عنوان":   {"address", "location", "contact"},
	"العنوان": {"address", "location", "contact"},
	"فين":     {"where", "location", "address"},

	// Policy
	"سياسة":    policyTerms,
	"السياسة":  policyTerms,
	"استرجاع":  {"refund", "return", "policy"},
	"استرداد":  {"refund", "policy"},
	"إلغاء":    {"cancel", "cancellation", "policy"},
	"الغاء":    {"cancel", "cancellation", "policy"},
	"شروط":     policyTerms,
	"ضمان":     {"guarantee", "warranty", "policy"},

	// FAQ
	"سؤال":    faqTerms,
	"أسئلة":   faqTerms,
	"اسئلة":   faqTerms,
	"الأسئلة": faqTerms,
	"مساعدة":  {"help", "support", "faq"},

	// Company
	"شركة":   companyTerms,
	"الشركة": companyTerms,
	"شركتكم": companyTerms,
	"مين":    {"who", "about", "company", "team"},
	"عنكم":   {"about", "company", "team"},
	"خبرة":   {"experience", "about", "company"},

	// Egyptian interrogatives and colloquial forms
	"ايه":     {"what"},
	"إيه":     {"what"},
	"ازاي":    {"how"},
	"إزاي":    {"how"},
	"امتى":    {"when", "schedule"},
	"إمتى":    {"when", "schedule"},
	"ليه":     {"why"},
	"عايز":    {"want", "need"},
	"عاوز":    {"want", "need"},
	"محتاج":   {"need"},
	"مواعيد":  {"schedule", "hours", "time", "dates"},
	"المواعيد": {"schedule", "hours", "time", "dates"},
	"مدة":     {"duration", "length", "weeks", "months"},
}

// ExtractKeywords tokenizes the normalized query on whitespace, trims
// leading and trailing punctuation from each token, drops tokens of one
// rune or fewer, and expands Arabic tokens through the dictionary.
// Expansion is single-hop: synonyms are never re-expanded.
func ExtractKeywords(query string) domain.KeywordSet {
	normalized := Normalize(query)
	ks := domain.KeywordSet{
		Original: []string{},
		Expanded: make(map[string]struct{}),
		Language: Detect(query),
	}

	for _, field := range strings.Fields(normalized) {
		token := strings.TrimFunc(field, unicode.IsPunct)
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		ks.Original = append(ks.Original, token)
		ks.Expanded[token] = struct{}{}
	}

	for _, token := range ks.Original {
		for _, synonym := range dictionary[token] {
			ks.Expanded[synonym] = struct{}{}
		}
	}

	return ks
}
