package school

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// MealTime is MMEAL_SC_CODE.
type MealTime int

const (
	Breakfast MealTime = 1
	Lunch     MealTime = 2
	Dinner    MealTime = 3
)

func (t MealTime) String() string {
	switch t {
	case Breakfast:
		return "breakfast"
	case Lunch:
		return "lunch"
	case Dinner:
		return "dinner"
	default:
		return "unknown"
	}
}

// Allergy is one of the numbered allergens printed after a dish.
type Allergy int

const (
	AllergyEgg Allergy = iota + 1
	AllergyMilk
	AllergyBuckwheat
	AllergyPeanut
	AllergySoybean
	AllergyWheat
	AllergyMackerel
	AllergyCrab
	AllergyShrimp
	AllergyPork
	AllergyPeach
	AllergyTomato
	AllergySulfite
	AllergyWalnut
	AllergyChicken
	AllergyBeef
	AllergyCalamari
	AllergyShellfish
	AllergyPineNut
)

var allergyNames = [...]string{
	"", "egg", "milk", "buckwheat", "peanut", "soybean", "wheat", "mackerel",
	"crab", "shrimp", "pork", "peach", "tomato", "sulfite", "walnut",
	"chicken", "beef", "calamari", "shellfish", "pine_nut",
}

func (a Allergy) String() string {
	if a >= AllergyEgg && a <= AllergyPineNut {
		return allergyNames[a]
	}
	return "allergy(" + strconv.Itoa(int(a)) + ")"
}

// Dish is one line of DDISH_NM.
type Dish struct {
	Name      string
	Allergies []Allergy
}

// Nutrient is one line of NTR_INFO, e.g. "탄수화물(g) : 95.9".
type Nutrient struct {
	Name  string
	Unit  string
	Value float64
}

// Origin is one line of ORPLC_INFO, e.g. "쌀 : 국내산".
type Origin struct {
	Ingredient string
	Origin     string
}

// Meal is one mealServiceDietInfo row.
type Meal struct {
	Date      time.Time
	Time      MealTime
	Dishes    []Dish
	Nutrients []Nutrient
	Origins   []Origin
	Headcount int
	Kcal      float64
}

// Meals is a list of meals with selectors by meal time.
type Meals []Meal

func (m Meals) filter(t MealTime) Meals {
	var out Meals
	for _, meal := range m {
		if meal.Time == t {
			out = append(out, meal)
		}
	}
	return out
}

// Breakfasts returns the breakfasts in m.
func (m Meals) Breakfasts() Meals { return m.filter(Breakfast) }

// Lunches returns the lunches in m.
func (m Meals) Lunches() Meals { return m.filter(Lunch) }

// Dinners returns the dinners in m.
func (m Meals) Dinners() Meals { return m.filter(Dinner) }

const lineBreak = "<br/>"

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, lineBreak) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseDish splits "name (1.2.5.)" into the dish name and its allergens.
// Star and at markers in the name are dropped.
func parseDish(line string) (Dish, error) {
	name := line
	var allergies []Allergy

	if open := strings.LastIndex(line, "("); open >= 0 && strings.HasSuffix(line, ")") {
		codes := line[open+1 : len(line)-1]
		parsed, ok := parseAllergies(codes)
		if ok {
			name = line[:open]
			allergies = parsed
		}
	}

	name = strings.NewReplacer("*", "", "@", "").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return Dish{}, fmt.Errorf("empty dish name in %q", line)
	}
	return Dish{Name: name, Allergies: allergies}, nil
}

func parseAllergies(codes string) ([]Allergy, bool) {
	var out []Allergy
	for _, part := range strings.Split(codes, ".") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		out = append(out, Allergy(n))
	}
	return out, true
}

func parseNutrient(line string) (Nutrient, error) {
	label, value, ok := strings.Cut(line, " : ")
	if !ok {
		return Nutrient{}, fmt.Errorf("malformed nutrient %q", line)
	}

	n := Nutrient{Name: strings.TrimSpace(label)}
	if open := strings.Index(label, "("); open >= 0 {
		n.Name = strings.TrimSpace(label[:open])
		if end := strings.Index(label[open:], ")"); end > 0 {
			n.Unit = label[open+1 : open+end]
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return Nutrient{}, fmt.Errorf("nutrient %q: %w", n.Name, err)
	}
	n.Value = v
	return n, nil
}

func parseOrigin(line string) (Origin, error) {
	i := strings.LastIndex(line, " : ")
	if i < 0 {
		return Origin{}, fmt.Errorf("malformed origin %q", line)
	}
	return Origin{
		Ingredient: strings.TrimSpace(line[:i]),
		Origin:     strings.TrimSpace(line[i+3:]),
	}, nil
}

// parseKcal reads "650.6 Kcal".
func parseKcal(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, errors.New("missing")
	}
	return strconv.ParseFloat(fields[0], 64)
}

func mapMeal(r *rowReader) Meal {
	meal := Meal{
		Date:      r.date("MLSV_YMD", false),
		Time:      MealTime(r.integer("MMEAL_SC_CODE")),
		Headcount: r.integer("MLSV_FGR"),
	}

	for _, line := range splitLines(r.required("DDISH_NM")) {
		dish, err := parseDish(line)
		if err != nil {
			r.fail("DDISH_NM", err)
			continue
		}
		meal.Dishes = append(meal.Dishes, dish)
	}

	for _, line := range splitLines(r.str("NTR_INFO")) {
		n, err := parseNutrient(line)
		if err != nil {
			r.fail("NTR_INFO", err)
			continue
		}
		meal.Nutrients = append(meal.Nutrients, n)
	}

	for _, line := range splitLines(r.str("ORPLC_INFO")) {
		o, err := parseOrigin(line)
		if err != nil {
			r.fail("ORPLC_INFO", err)
			continue
		}
		meal.Origins = append(meal.Origins, o)
	}

	if r.has("CAL_INFO") {
		kcal, err := parseKcal(r.str("CAL_INFO"))
		if err != nil {
			r.fail("CAL_INFO", err)
		}
		meal.Kcal = kcal
	}

	return meal
}

// MapMeals maps mealServiceDietInfo rows.
func MapMeals(rows []client.Row) (Meals, error) {
	return mapRows(client.ServiceMeal, rows, mapMeal)
}
