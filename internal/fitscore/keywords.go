package fitscore

// Curated domain and category terms. A shared token from this set is strong
// evidence that the opportunity and the project are about the same thing.
var primaryKeywords = []string{
	"ai", "artificial", "intelligence", "machine", "learning", "data", "software",
	"platform", "digital", "technology", "tech", "analytics", "automation",
	"health", "healthcare", "medical", "clinic", "mental", "wellness",
	"housing", "affordable", "shelter", "homeless", "homelessness", "rental",
	"education", "school", "schools", "students", "literacy", "youth", "stem",
	"climate", "energy", "renewable", "solar", "environment", "environmental", "conservation",
	"agriculture", "farm", "farmers", "food", "nutrition",
	"arts", "culture", "museum", "music",
	"research", "science", "scientific", "innovation",
	"water", "transportation", "broadband", "workforce", "veterans", "disability",
}

// Generic funding vocabulary. Shared usage says little about thematic fit.
var secondaryKeywords = []string{
	"grant", "grants", "funding", "fund", "funds", "award", "awards", "program",
	"programs", "project", "projects", "support", "development", "capacity",
	"initiative", "opportunity", "opportunities", "nonprofit", "organization",
	"organizations", "community", "communities", "services", "public", "local",
	"national", "federal", "state", "impact", "building", "expansion",
}

var stopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "can", "for", "from", "has",
	"have", "in", "into", "is", "it", "its", "of", "on", "or", "our", "that",
	"the", "their", "these", "this", "to", "was", "we", "were", "will", "with",
	"who", "which", "while", "within", "you", "your", "all", "any", "more",
	"new", "other", "such", "than", "through", "up", "use", "using", "via",
}

// Categories in the same group are treated as aligned.
var categorySynonyms = [][]string{
	{"artificial intelligence", "ai", "machine learning", "ml", "technology", "tech", "software", "data science", "digital innovation"},
	{"housing", "affordable housing", "shelter", "homelessness", "community development", "real estate"},
	{"healthcare", "health", "medical", "public health", "mental health", "health care"},
	{"education", "schools", "k-12", "higher education", "literacy", "youth development"},
	{"environment", "climate", "sustainability", "conservation", "clean energy", "renewable energy", "energy"},
	{"arts", "culture", "arts and culture", "humanities", "music"},
	{"agriculture", "food", "food security", "farming", "nutrition"},
	{"workforce", "workforce development", "employment", "job training"},
}

// organizationTypeAliases maps spelling variants onto one canonical type.
var organizationTypeAliases = map[string]string{
	"non-profit":     "nonprofit",
	"not-for-profit": "nonprofit",
	"501c3":          "501(c)(3)",
	"tribe":          "tribal government",
}

// organizationTypeHierarchy lists, for a generic allowed type, the more
// specific organization types that satisfy it. Satisfaction only runs from
// specific to generic: a "city" meets a "government" restriction, but a
// "government" does not meet a "city" one.
var organizationTypeHierarchy = map[string][]string{
	"nonprofit":         {"501(c)(3)", "charity", "ngo", "foundation"},
	"business":          {"small business", "for-profit", "company", "startup", "corporation", "llc"},
	"government":        {"local government", "municipality", "state government", "public agency", "city", "county", "tribal government"},
	"local government":  {"municipality", "city", "county"},
	"tribal government": {"tribal organization", "native american tribe"},
	"education":         {"university", "college", "school", "school district", "institution of higher education"},
	"individual":        {"researcher", "artist"},
}

// Allowed-type entries that admit every organization.
var openOrganizationTypes = []string{"any", "all", "everyone", "all organizations"}
