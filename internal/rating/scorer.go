package rating

import (
	"math"
	"time"
)

// Rating bands.
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandAverage   = "average"
	BandBasic     = "basic"
	BandStarting  = "starting"
)

// Animal is one livestock line in a farmer's diagnosis. Yield and price
// fields are optional; zero means "not reported" and the revenue estimate
// falls back to conservative defaults.
type Animal struct {
	Type      string  `json:"type"`
	Count     int64   `json:"count"`
	Direction string  `json:"direction"`
	MilkYield float64 `json:"milkYield"`
	MilkPrice float64 `json:"milkPrice"`
	MeatYield float64 `json:"meatYield"`
	MeatPrice float64 `json:"meatPrice"`
}

// Crop is one sown culture with its season result.
type Crop struct {
	Type       string  `json:"type"`
	Area       float64 `json:"area"`
	Yield      float64 `json:"yield"`
	PricePerKg float64 `json:"pricePerKg"`
}

// Equipment is one machine with its production year.
type Equipment struct {
	Name        string `json:"name"`
	Year        int    `json:"year"`
	Attachments string `json:"attachments"`
}

// Diagnostics is the raw input the scorer works from.
type Diagnostics struct {
	LandArea           float64     `json:"land_area"`
	LandOwned          float64     `json:"land_owned"`
	LandRented         float64     `json:"land_rented"`
	EmployeesPermanent int         `json:"employees_permanent"`
	EmployeesSeasonal  int         `json:"employees_seasonal"`
	Animals            []Animal    `json:"animals"`
	Crops              []Crop      `json:"crops"`
	Equipment          []Equipment `json:"equipment"`
}

// Profile carries the non-diagnostic inputs to scoring.
type Profile struct {
	Region string `json:"region"`
}

// Breakdown holds the seven raw component scores, each in [0, 100].
type Breakdown struct {
	Region    float64 `json:"region"`
	Land      float64 `json:"land"`
	Animal    float64 `json:"animal"`
	Equipment float64 `json:"equipment"`
	Crop      float64 `json:"crop"`
	Staff     float64 `json:"staff"`
	Finance   float64 `json:"finance"`
}

// Coefficients are per-component bonus multipliers, typically in [1.0, 1.2]
// (harsh climate, rare breed). Zero means "unset" and is treated as 1.0.
type Coefficients struct {
	Region    float64 `json:"region"`
	Land      float64 `json:"land"`
	Animal    float64 `json:"animal"`
	Equipment float64 `json:"equipment"`
	Crop      float64 `json:"crop"`
	Staff     float64 `json:"staff"`
	Finance   float64 `json:"finance"`
}

// Score computes the component breakdown. Deterministic for identical input.
func Score(d Diagnostics, p Profile) Breakdown {
	return Breakdown{
		Region:    roundTenth(regionScore(p.Region)),
		Land:      roundTenth(landScore(d)),
		Animal:    roundTenth(animalScore(d.Animals)),
		Equipment: roundTenth(equipmentScore(d.Equipment, time.Now().Year())),
		Crop:      roundTenth(cropScore(d.Crops)),
		Staff:     roundTenth(staffScore(d)),
		Finance:   roundTenth(financeScore(d)),
	}
}

// ApplyCoefficients multiplies each component by its coefficient.
func ApplyCoefficients(b Breakdown, c Coefficients) Breakdown {
	return Breakdown{
		Region:    b.Region * coef(c.Region),
		Land:      b.Land * coef(c.Land),
		Animal:    b.Animal * coef(c.Animal),
		Equipment: b.Equipment * coef(c.Equipment),
		Crop:      b.Crop * coef(c.Crop),
		Staff:     b.Staff * coef(c.Staff),
		Finance:   b.Finance * coef(c.Finance),
	}
}

// Total sums the weighted components, rounded to the nearest point.
func Total(b Breakdown) int {
	sum := b.Region + b.Land + b.Animal + b.Equipment + b.Crop + b.Staff + b.Finance
	return int(math.Round(sum))
}

// Band classifies a total rating.
func Band(total int) string {
	switch {
	case total >= 600:
		return BandExcellent
	case total >= 450:
		return BandGood
	case total >= 300:
		return BandAverage
	case total >= 150:
		return BandBasic
	default:
		return BandStarting
	}
}

var regionBonuses = map[string]float64{
	"Краснодарский край":    100,
	"Ростовская область":    95,
	"Воронежская область":   90,
	"Ставропольский край":   90,
	"Белгородская область":  85,
	"Тамбовская область":    80,
	"Саратовская область":   75,
	"Волгоградская область": 75,
	"Курская область":       70,
	"Липецкая область":      70,
	"Московская область":    65,
	"Ленинградская область": 60,
	"Алтайский край":        70,
	"Новосибирская область": 65,
	"Омская область":        60,
	"Татарстан":             80,
	"Башкортостан":          75,
}

func regionScore(region string) float64 {
	if bonus, ok := regionBonuses[region]; ok {
		return bonus
	}
	return 50
}

// landScore is half area scale (100 ha saturates the area half) and half
// ownership ratio.
func landScore(d Diagnostics) float64 {
	if d.LandArea == 0 {
		return 0
	}
	areaScore := math.Min(100, d.LandArea/100*50)
	ownershipScore := d.LandOwned / d.LandArea * 50
	return areaScore + ownershipScore
}

type productivity struct {
	base        float64
	byDirection map[string]float64
}

var animalProductivity = map[string]productivity{
	"cows":     {base: 15, byDirection: map[string]float64{"meat": 20, "milk": 25, "mixed": 22}},
	"pigs":     {base: 12, byDirection: map[string]float64{"meat": 18}},
	"chickens": {base: 8, byDirection: map[string]float64{"meat": 10}},
	"sheep":    {base: 10, byDirection: map[string]float64{"meat": 12}},
	"horses":   {base: 20},
	"deer":     {base: 18},
	"hives":    {base: 25},
}

func animalScore(animals []Animal) float64 {
	total := 0.0
	for _, a := range animals {
		prod, ok := animalProductivity[a.Type]
		if !ok {
			continue
		}
		base := prod.base
		if v, ok := prod.byDirection[a.Direction]; ok {
			base = v
		}
		bonus := 1.0
		if a.Direction == "milk" && a.MilkYield > 5000 {
			bonus = 1.3
		} else if a.Direction == "meat" && a.MeatYield > 300 {
			bonus = 1.2
		}
		total += float64(a.Count) / 10 * base * bonus
	}
	return math.Min(100, total)
}

func equipmentScore(equipment []Equipment, currentYear int) float64 {
	total := 0.0
	for _, item := range equipment {
		year := item.Year
		if year == 0 {
			year = currentYear
		}
		age := currentYear - year
		var ageScore float64
		switch {
		case age <= 3:
			ageScore = 20
		case age <= 7:
			ageScore = 15
		case age <= 15:
			ageScore = 10
		default:
			ageScore = 5
		}
		if item.Attachments != "" {
			ageScore += 5
		}
		total += ageScore
	}
	return math.Min(100, total)
}

// Benchmark yields in tonnes per hectare per culture.
var cropBenchmarks = map[string]float64{
	"beet":     45.0,
	"cabbage":  35.0,
	"rapeseed": 2.5,
	"soy":      2.0,
	"corn":     8.0,
	"garlic":   15.0,
	"other":    3.5,
}

func cropScore(crops []Crop) float64 {
	total := 0.0
	for _, c := range crops {
		if c.Area <= 0 || c.Yield <= 0 {
			continue
		}
		benchmark, ok := cropBenchmarks[c.Type]
		if !ok {
			benchmark = cropBenchmarks["other"]
		}
		yieldRatio := c.Yield / c.Area / benchmark
		priceFactor := math.Min(2.0, orDefault(c.PricePerKg, 10)/10)
		total += yieldRatio * c.Area * priceFactor * 5
	}
	return math.Min(100, total)
}

func staffScore(d Diagnostics) float64 {
	return math.Min(70, float64(d.EmployeesPermanent)*7) +
		math.Min(30, float64(d.EmployeesSeasonal)*2)
}

// financeScore bands the estimated revenue potential in thousands.
func financeScore(d Diagnostics) float64 {
	revenue := 0.0
	for _, a := range d.Animals {
		switch a.Direction {
		case "milk":
			revenue += float64(a.Count) * orDefault(a.MilkYield, 4000) * orDefault(a.MilkPrice, 35) / 1000
		case "meat":
			revenue += float64(a.Count) * orDefault(a.MeatYield, 250) * orDefault(a.MeatPrice, 300) / 1000
		}
	}
	for _, c := range d.Crops {
		revenue += c.Yield * orDefault(c.PricePerKg, 10) / 1000
	}
	switch {
	case revenue > 10000:
		return 100
	case revenue > 5000:
		return 85
	case revenue > 1000:
		return 70
	case revenue > 500:
		return 50
	case revenue > 100:
		return 30
	default:
		return 10
	}
}

func coef(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	return v
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
