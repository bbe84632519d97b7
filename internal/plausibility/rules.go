package plausibility

import "github.com/prepkitchen/label-cli/internal/nutrient"

// Range is an inclusive expected band for one nutrient in one category.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the band.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// categoryRanges holds the per-100g expectations for the six checked
// nutrients in each category. Bands are deliberately generous: they catch
// data-entry errors and unit slips, not culinary variety.
var categoryRanges = map[Category]map[nutrient.Key]Range{
	CategoryMeatPoultry: {
		nutrient.Kcal:    {100, 300},
		nutrient.Protein: {15, 35},
		nutrient.Carb:    {0, 3},
		nutrient.Fat:     {1, 25},
		nutrient.Fiber:   {0, 1},
		nutrient.Sugars:  {0, 2},
	},
	CategoryFishSeafood: {
		nutrient.Kcal:    {70, 250},
		nutrient.Protein: {15, 30},
		nutrient.Carb:    {0, 3},
		nutrient.Fat:     {0.5, 20},
		nutrient.Fiber:   {0, 1},
		nutrient.Sugars:  {0, 1},
	},
	CategoryDairy: {
		nutrient.Kcal:    {30, 450},
		nutrient.Protein: {1, 30},
		nutrient.Carb:    {0, 30},
		nutrient.Fat:     {0, 40},
		nutrient.Fiber:   {0, 1},
		nutrient.Sugars:  {0, 25},
	},
	CategoryEggs: {
		nutrient.Kcal:    {50, 200},
		nutrient.Protein: {5, 15},
		nutrient.Carb:    {0, 3},
		nutrient.Fat:     {3, 15},
		nutrient.Fiber:   {0, 1},
		nutrient.Sugars:  {0, 2},
	},
	CategoryGrains: {
		nutrient.Kcal:    {70, 400},
		nutrient.Protein: {2, 15},
		nutrient.Carb:    {15, 85},
		nutrient.Fat:     {0, 10},
		nutrient.Fiber:   {0, 15},
		nutrient.Sugars:  {0, 10},
	},
	CategoryLegumes: {
		nutrient.Kcal:    {70, 400},
		nutrient.Protein: {5, 30},
		nutrient.Carb:    {10, 65},
		nutrient.Fat:     {0, 20},
		nutrient.Fiber:   {2, 20},
		nutrient.Sugars:  {0, 10},
	},
	CategoryVegetables: {
		nutrient.Kcal:    {10, 150},
		nutrient.Protein: {0, 6},
		nutrient.Carb:    {2, 25},
		nutrient.Fat:     {0, 2},
		nutrient.Fiber:   {0, 10},
		nutrient.Sugars:  {0, 10},
	},
	CategoryFruits: {
		nutrient.Kcal:    {25, 150},
		nutrient.Protein: {0, 3},
		nutrient.Carb:    {5, 30},
		nutrient.Fat:     {0, 2},
		nutrient.Fiber:   {0, 10},
		nutrient.Sugars:  {3, 25},
	},
	CategoryNutsSeeds: {
		nutrient.Kcal:    {400, 700},
		nutrient.Protein: {10, 30},
		nutrient.Carb:    {5, 35},
		nutrient.Fat:     {30, 75},
		nutrient.Fiber:   {3, 15},
		nutrient.Sugars:  {0, 10},
	},
	CategoryOilsFats: {
		nutrient.Kcal:    {700, 900},
		nutrient.Protein: {0, 1},
		nutrient.Carb:    {0, 1},
		nutrient.Fat:     {80, 100},
		nutrient.Fiber:   {0, 0.5},
		nutrient.Sugars:  {0, 0.5},
	},
	CategoryBeverages: {
		nutrient.Kcal:    {0, 150},
		nutrient.Protein: {0, 4},
		nutrient.Carb:    {0, 15},
		nutrient.Fat:     {0, 4},
		nutrient.Fiber:   {0, 2},
		nutrient.Sugars:  {0, 15},
	},
	CategoryCondiments: {
		nutrient.Kcal:    {20, 500},
		nutrient.Protein: {0, 10},
		nutrient.Carb:    {0, 60},
		nutrient.Fat:     {0, 50},
		nutrient.Fiber:   {0, 5},
		nutrient.Sugars:  {0, 40},
	},
}

// checkedCategoryKeys is the fixed evaluation order for category ranges.
var checkedCategoryKeys = []nutrient.Key{
	nutrient.Kcal, nutrient.Protein, nutrient.Carb,
	nutrient.Fat, nutrient.Fiber, nutrient.Sugars,
}
