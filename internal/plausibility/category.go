package plausibility

import "strings"

// Category is a food category with its own expected nutrient ranges.
type Category string

const (
	CategoryMeatPoultry Category = "meat_poultry"
	CategoryFishSeafood Category = "fish_seafood"
	CategoryDairy       Category = "dairy"
	CategoryEggs        Category = "eggs"
	CategoryGrains      Category = "grains"
	CategoryLegumes     Category = "legumes"
	CategoryVegetables  Category = "vegetables"
	CategoryFruits      Category = "fruits"
	CategoryNutsSeeds   Category = "nuts_seeds"
	CategoryOilsFats    Category = "oils_fats"
	CategoryBeverages   Category = "beverages"
	CategoryCondiments  Category = "condiments"
	CategoryUnknown     Category = "unknown"
)

// categoryPattern pairs a category with its detection keywords.
type categoryPattern struct {
	category Category
	keywords []string
}

// detectionOrder lists patterns most-specific first, so "peanut oil" lands
// in oils before nuts and "coconut milk" in nuts before dairy. The order is
// fixed: detection must be deterministic for identical names.
var detectionOrder = []categoryPattern{
	{CategoryOilsFats, []string{
		"oil", "lard", "tallow", "shortening", "ghee", "margarine",
	}},
	{CategoryNutsSeeds, []string{
		"almond", "walnut", "pecan", "cashew", "pistachio", "hazelnut",
		"macadamia", "peanut", "sunflower seed", "pumpkin seed", "sesame seed",
		"chia", "flax", "nut butter", "tahini",
	}},
	{CategoryFishSeafood, []string{
		"salmon", "tuna", "cod", "tilapia", "halibut", "trout", "sardine",
		"anchovy", "mackerel", "shrimp", "prawn", "crab", "lobster", "scallop",
		"oyster", "mussel", "clam", "fish", "seafood",
	}},
	{CategoryMeatPoultry, []string{
		"chicken", "turkey", "duck", "beef", "steak", "pork", "ham", "bacon",
		"lamb", "veal", "venison", "bison", "sausage", "meatball", "brisket",
		"poultry", "meat",
	}},
	{CategoryEggs, []string{
		"egg",
	}},
	{CategoryDairy, []string{
		"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "kefir",
		"whey", "cottage", "mozzarella", "cheddar", "parmesan", "ricotta",
	}},
	{CategoryLegumes, []string{
		"bean", "lentil", "chickpea", "garbanzo", "pea", "edamame", "tofu",
		"tempeh", "hummus",
	}},
	{CategoryGrains, []string{
		"rice", "quinoa", "oat", "barley", "farro", "bulgur", "couscous",
		"pasta", "noodle", "bread", "tortilla", "wheat", "flour", "cereal",
		"grain", "millet", "polenta", "cornmeal",
	}},
	{CategoryBeverages, []string{
		"juice", "tea", "coffee", "soda", "water", "lemonade", "smoothie",
		"drink", "beverage", "broth", "stock",
	}},
	{CategoryCondiments, []string{
		"sauce", "dressing", "ketchup", "mustard", "mayonnaise", "mayo",
		"vinegar", "salsa", "relish", "chutney", "pesto", "marinade",
		"seasoning", "spice", "syrup", "honey", "jam", "condiment", "gravy",
	}},
	{CategoryFruits, []string{
		"apple", "banana", "orange", "berry", "berries", "strawberr", "blueberr",
		"raspberr", "grape", "melon", "mango", "pineapple", "peach", "pear",
		"plum", "cherry", "kiwi", "citrus", "lemon", "lime", "avocado", "fruit",
	}},
	{CategoryVegetables, []string{
		"broccoli", "spinach", "kale", "carrot", "potato", "tomato", "onion",
		"pepper", "zucchini", "squash", "cauliflower", "cabbage", "lettuce",
		"celery", "cucumber", "asparagus", "mushroom", "beet", "radish",
		"greens", "vegetable",
	}},
}

// DetectCategory resolves a food category from a product name by ordered
// keyword matching, falling back to unknown.
func DetectCategory(productName string) Category {
	name := strings.ToLower(productName)
	if strings.TrimSpace(name) == "" {
		return CategoryUnknown
	}
	for _, p := range detectionOrder {
		for _, kw := range p.keywords {
			if strings.Contains(name, kw) {
				return p.category
			}
		}
	}
	return CategoryUnknown
}

// ParseCategory returns the Category for s, or unknown when s names none.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryRanges[c]; ok {
		return c
	}
	return CategoryUnknown
}
