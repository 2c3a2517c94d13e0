// internal/search/vocabulary/vocabulary.go
package vocabulary

// Synonym maps a colloquial phrase to a canonical category.
type Synonym struct {
	Phrase    string
	Canonical string
}

// PhraseValue maps a literal phrase to a numeric filter value.
type PhraseValue struct {
	Phrase string
	Value  float64
}

// Vocabulary holds every word list the extractors consult. All slices are
// ordered; extractors rely on that order for first-match-wins behavior.
// A Vocabulary is read-only once built and safe for concurrent use.
type Vocabulary struct {
	Categories []string
	Synonyms   []Synonym

	RatingPhrases   []PhraseValue
	TemporalPhrases []string
	PricePhrases    []PhraseValue
	Attributes      []string

	RelativeLocations  []string
	LandmarkIndicators []string
	LocationStopWords  []string
	AmbiguousPlaces    []string
	PronounPhrases     []string

	RefinementDirectives []string
	RefinementAttributes []string
	ResetPhrases         []string
}

// IsCategory reports whether name is a canonical category.
func (v *Vocabulary) IsCategory(name string) bool {
	for _, c := range v.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Default returns the built-in English vocabulary.
func Default() *Vocabulary {
	return &Vocabulary{
		Categories: []string{
			"restaurant", "coffee_shop", "bar", "grocery_store", "bank",
			"pharmacy", "gas_station", "hotel", "hair_salon", "gym",
			"auto_repair", "dentist", "veterinarian", "bakery", "cafe",
			"fast_food", "food", "store", "shopping_mall", "movie_theater",
			"park", "library", "hospital", "school", "business", "place",
		},
		Synonyms: defaultSynonyms(),

		RatingPhrases: []PhraseValue{
			{"highly rated", 4},
			{"top rated", 4},
			{"good reviews", 4},
			{"great reviews", 4},
			{"excellent", 4},
		},
		TemporalPhrases: []string{
			"open now", "open late", "24 hours", "24/7", "open on sunday", "open on",
		},
		PricePhrases: []PhraseValue{
			{"cheap", 1},
			{"inexpensive", 1},
			{"affordable", 2},
			{"expensive", 3},
			{"fine dining", 4},
			{"budget", 1},
		},
		Attributes: []string{
			"wifi", "wi-fi", "outdoor seating", "patio", "delivery", "takeout",
			"wheelchair accessible", "parking", "pet friendly", "kid friendly",
			"vegan", "vegetarian", "gluten free",
		},

		RelativeLocations: []string{
			"near me", "nearby", "close by", "around here", "in the area",
			"local", "within walking distance",
		},
		LandmarkIndicators: []string{
			"near", "by", "around", "close to", "next to", "downtown",
		},
		LocationStopWords: []string{"the", "a", "an", "my", "your", "this", "that"},
		AmbiguousPlaces: []string{
			"portland", "springfield", "franklin", "clinton", "washington",
			"madison", "arlington",
		},
		PronounPhrases: []string{"there", "that place", "that area"},

		RefinementDirectives: []string{
			`show\s+only`, `filter\s+to`, `which\s+are`, `just\s+the`,
			`limit\s+to`, `only\s+show`, `narrow\s+down`, `reduce\s+to`,
		},
		RefinementAttributes: []string{
			"wifi", "wi-fi", "outdoor seating", "patio", "delivery", "takeout",
			"take-out", "wheelchair accessible", "parking", "valet parking",
			"pet friendly", "kid friendly", "family friendly",
		},
		ResetPhrases: []string{"show all", "reset filters", "clear filters", "start over"},
	}
}

func defaultSynonyms() []Synonym {
	pairs := [][2]string{
		{"coffee shop", "coffee_shop"},
		{"coffee", "coffee_shop"},
		{"cafe", "cafe"},
		{"cafes", "cafe"},
		{"coffeehouse", "coffee_shop"},

		{"restaurants", "restaurant"},
		{"restaurant", "restaurant"},
		{"dining", "restaurant"},
		{"eatery", "restaurant"},
		{"eateries", "restaurant"},

		{"italian", "restaurant"},
		{"italian restaurant", "restaurant"},
		{"italian restaurants", "restaurant"},
		{"sushi", "restaurant"},
		{"sushi restaurant", "restaurant"},
		{"pizza", "restaurant"},
		{"pizza place", "restaurant"},
		{"pizza places", "restaurant"},
		{"pizzeria", "restaurant"},
		{"tacos", "restaurant"},
		{"taco", "restaurant"},
		{"mexican", "restaurant"},
		{"mexican food", "restaurant"},
		{"thai", "restaurant"},
		{"thai food", "restaurant"},
		{"chinese", "restaurant"},
		{"chinese food", "restaurant"},
		{"japanese", "restaurant"},
		{"indian", "restaurant"},
		{"burger", "fast_food"},
		{"burgers", "fast_food"},

		{"bars", "bar"},
		{"pub", "bar"},
		{"pubs", "bar"},
		{"tavern", "bar"},
		{"brewery", "bar"},

		{"grocery", "grocery_store"},
		{"groceries", "grocery_store"},
		{"supermarket", "grocery_store"},
		{"market", "grocery_store"},

		{"banks", "bank"},
		{"atm", "bank"},
		{"credit union", "bank"},

		{"pharmacies", "pharmacy"},
		{"drugstore", "pharmacy"},
		{"drug store", "pharmacy"},

		{"gas", "gas_station"},
		{"fuel", "gas_station"},
		{"petrol", "gas_station"},

		{"hotels", "hotel"},
		{"motel", "hotel"},
		{"lodging", "hotel"},
		{"accommodation", "hotel"},

		{"salon", "hair_salon"},
		{"salons", "hair_salon"},
		{"barber", "hair_salon"},
		{"barbers", "hair_salon"},
		{"hairdresser", "hair_salon"},
		{"gyms", "gym"},
		{"fitness", "gym"},
		{"fitness center", "gym"},
		{"mechanic", "auto_repair"},
		{"mechanics", "auto_repair"},
		{"car repair", "auto_repair"},
		{"dentists", "dentist"},
		{"dental", "dentist"},
		{"vet", "veterinarian"},
		{"vets", "veterinarian"},
		{"veterinarians", "veterinarian"},
		{"animal hospital", "veterinarian"},

		{"bakeries", "bakery"},
		{"bakery", "bakery"},
		{"bread", "bakery"},
		{"pastry", "bakery"},

		{"fast food", "fast_food"},
		{"quick service", "fast_food"},

		{"stores", "store"},
		{"shop", "store"},
		{"shops", "store"},
		{"mall", "shopping_mall"},
		{"shopping center", "shopping_mall"},

		{"cinema", "movie_theater"},
		{"theater", "movie_theater"},
		{"movies", "movie_theater"},

		{"parks", "park"},
		{"libraries", "library"},
		{"hospitals", "hospital"},
		{"medical center", "hospital"},
		{"clinic", "hospital"},

		{"schools", "school"},
		{"university", "school"},
		{"college", "school"},
	}

	out := make([]Synonym, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Synonym{Phrase: p[0], Canonical: p[1]})
	}
	return out
}
