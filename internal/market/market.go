// Package market advises farmers when to sell a harvest, using historic
// monthly mandi prices and crop storage characteristics.
package market

import (
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

// DefaultCrop is used for crops without price history.
const DefaultCrop = "Wheat"

type storage struct {
	MaxMonths    float64 `yaml:"maxMonths"`
	CostPerMonth int     `yaml:"costPerMonth"`
	LossPerMonth float64 `yaml:"lossPerMonth"`
}

// CropPrices is the price history of one crop.
type CropPrices struct {
	Name          string   `json:"name" yaml:"name"`
	PeakMonths    []string `json:"peakMonths" yaml:"peakMonths"`
	LowMonths     []string `json:"lowMonths" yaml:"lowMonths"`
	AvgPrice      int      `json:"avgPrice" yaml:"avgPrice"`
	Volatility    int      `json:"volatility" yaml:"volatility"`
	MonthlyPrices []int    `json:"monthlyPrices" yaml:"monthlyPrices"`
	Storage       storage  `json:"-" yaml:"storage"`
	Facilities    []string `json:"-" yaml:"facilities"`
	Tips          []string `json:"-" yaml:"tips"`
}

type region struct {
	Match   string `yaml:"match"`
	Insight string `yaml:"insight"`
}

type table struct {
	Crops   []CropPrices `yaml:"crops"`
	Regions []region     `yaml:"regions"`
}

var prices = mustLoad(pricesYAML)

func mustLoad(data []byte) *table {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		panic(fmt.Sprintf("market: parse prices: %v", err))
	}
	for _, c := range t.Crops {
		if len(c.MonthlyPrices) != 12 {
			panic(fmt.Sprintf("market: %s: want 12 monthly prices", c.Name))
		}
		if len(c.PeakMonths) == 0 {
			panic(fmt.Sprintf("market: %s: no peak months", c.Name))
		}
		for _, m := range c.PeakMonths {
			if _, ok := monthIndex(m); !ok {
				panic(fmt.Sprintf("market: %s: unknown peak month %q", c.Name, m))
			}
		}
	}
	return &t
}

func monthIndex(name string) (int, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m) - 1, true
		}
	}
	return 0, false
}

// Lookup returns the price history for crop, case-insensitively, falling
// back to DefaultCrop.
func Lookup(crop string) CropPrices {
	crop = strings.TrimSpace(crop)
	var def CropPrices
	for _, c := range prices.Crops {
		if strings.EqualFold(c.Name, crop) {
			return c
		}
		if c.Name == DefaultCrop {
			def = c
		}
	}
	return def
}

type Immediate struct {
	Action        string `json:"action"`
	Confidence    int    `json:"confidence"`
	Reason        string `json:"reason"`
	ExpectedPrice int    `json:"expectedPrice"`
	Risk          string `json:"risk"`
}

type ShortTerm struct {
	BestSellingMonth string `json:"bestSellingMonth"`
	ExpectedPrice    int    `json:"expectedPrice"`
	PotentialGain    string `json:"potentialGain"`
	Timeline         string `json:"timeline"`
	Confidence       int    `json:"confidence"`
	StorageRequired  bool   `json:"storageRequired"`
}

type LongTerm struct {
	BestPeakMonth            string `json:"bestPeakMonth"`
	MaxExpectedPrice         int    `json:"maxExpectedPrice"`
	MaxPotentialGain         string `json:"maxPotentialGain"`
	MonthsToWait             int    `json:"monthsToWait"`
	Confidence               int    `json:"longTermConfidence"`
	StorageCostConsideration bool   `json:"storageCostConsideration"`
}

type StorageAdvice struct {
	MaxStoragePeriod string   `json:"maxStoragePeriod"`
	MonthlyCost      string   `json:"monthlyCost"`
	MonthlyLoss      string   `json:"monthlyLoss"`
	Facilities       []string `json:"facilities"`
	Tips             []string `json:"tips"`
}

// Advice is the full selling recommendation for one harvest.
type Advice struct {
	Crop           string        `json:"crop"`
	HarvestMonth   string        `json:"harvestMonth"`
	Immediate      Immediate     `json:"immediate"`
	ShortTerm      ShortTerm     `json:"shortTerm"`
	LongTerm       LongTerm      `json:"longTerm"`
	StorageAdvice  StorageAdvice `json:"storageAdvice"`
	MarketInsights []string      `json:"marketInsights"`
	MonthlyPrices  []int         `json:"monthlyPrices"`
}

// Advise builds selling advice for crop harvested in month.
func Advise(crop string, month time.Month, location string) Advice {
	c := Lookup(crop)
	h := int(month) - 1
	if h < 0 || h > 11 {
		h = 0
	}
	return Advice{
		Crop:           c.Name,
		HarvestMonth:   time.Month(h + 1).String(),
		Immediate:      immediate(c, h),
		ShortTerm:      shortTerm(c, h),
		LongTerm:       longTerm(c, h),
		StorageAdvice:  storageAdvice(c),
		MarketInsights: insights(c, location),
		MonthlyPrices:  append([]int(nil), c.MonthlyPrices...),
	}
}

// HarvestMonth reads the month from an ISO date or RFC 3339 timestamp.
func HarvestMonth(date string) (time.Month, error) {
	date = strings.TrimSpace(date)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Month(), nil
		}
	}
	return 0, fmt.Errorf("harvest date %q: want YYYY-MM-DD", date)
}

// pctChange formats the change from base to v with one decimal.
func pctChange(v, base int) float64 {
	return math.Round(float64(v-base)/float64(base)*1000) / 10
}

func fmtPct(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

func immediate(c CropPrices, h int) Immediate {
	cur := c.MonthlyPrices[h]
	avg := float64(c.AvgPrice)
	diff := pctChange(cur, c.AvgPrice)

	switch {
	case float64(cur) > avg*1.1:
		return Immediate{
			Action:        "SELL NOW",
			Confidence:    85,
			Reason:        fmt.Sprintf("Current prices are %s%% above average. Good time to sell immediately.", fmtPct(diff)),
			ExpectedPrice: cur,
			Risk:          "Low",
		}
	case float64(cur) < avg*0.9:
		return Immediate{
			Action:        "WAIT",
			Confidence:    75,
			Reason:        fmt.Sprintf("Current prices are %s%% below average. Consider waiting for better prices.", fmtPct(math.Abs(diff))),
			ExpectedPrice: cur,
			Risk:          "Medium",
		}
	}
	return Immediate{
		Action:        "NEUTRAL",
		Confidence:    70,
		Reason:        fmt.Sprintf("Current prices are near average (%s%% difference). Decision depends on storage capacity.", fmtPct(diff)),
		ExpectedPrice: cur,
		Risk:          "Medium",
	}
}

func shortTerm(c CropPrices, h int) ShortTerm {
	best, ahead := -1, 0
	for i := 1; i <= 3; i++ {
		idx := (h + i) % 12
		if best < 0 || c.MonthlyPrices[idx] > c.MonthlyPrices[best] {
			best, ahead = idx, i
		}
	}
	short := time.Month(best + 1).String()[:3]
	return ShortTerm{
		BestSellingMonth: short,
		ExpectedPrice:    c.MonthlyPrices[best],
		PotentialGain:    fmt.Sprintf("%+.1f%%", pctChange(c.MonthlyPrices[best], c.MonthlyPrices[h])),
		Timeline:         fmt.Sprintf("%s (%d months from harvest)", short, ahead),
		Confidence:       80,
		StorageRequired:  true,
	}
}

func monthsAway(from, to int) int {
	n := to - from
	if n <= 0 {
		n += 12
	}
	return n
}

func longTerm(c CropPrices, h int) LongTerm {
	best := -1
	var bestName string
	for _, name := range c.PeakMonths {
		idx, _ := monthIndex(name)
		if best < 0 || c.MonthlyPrices[idx] > c.MonthlyPrices[best] {
			best, bestName = idx, name
		}
	}
	return LongTerm{
		BestPeakMonth:            bestName,
		MaxExpectedPrice:         c.MonthlyPrices[best],
		MaxPotentialGain:         fmt.Sprintf("%+.1f%%", pctChange(c.MonthlyPrices[best], c.MonthlyPrices[h])),
		MonthsToWait:             monthsAway(h, best),
		Confidence:               85,
		StorageCostConsideration: true,
	}
}

func storageAdvice(c CropPrices) StorageAdvice {
	return StorageAdvice{
		MaxStoragePeriod: strconv.FormatFloat(c.Storage.MaxMonths, 'f', -1, 64) + " months",
		MonthlyCost:      fmt.Sprintf("₹%d/quintal", c.Storage.CostPerMonth),
		MonthlyLoss:      strconv.FormatFloat(c.Storage.LossPerMonth, 'f', -1, 64) + "%",
		Facilities:       append([]string(nil), c.Facilities...),
		Tips:             append([]string(nil), c.Tips...),
	}
}

func insights(c CropPrices, location string) []string {
	out := []string{
		fmt.Sprintf("Historic data shows %d%% price volatility for this crop", c.Volatility),
		"Peak selling months are typically " + strings.Join(c.PeakMonths, ", "),
		"Avoid selling during " + strings.Join(c.LowMonths, ", ") + " for better prices",
		fmt.Sprintf("Average annual price: ₹%d/quintal", c.AvgPrice),
	}
	loc := strings.ToLower(location)
	for _, r := range prices.Regions {
		if loc != "" && strings.Contains(loc, r.Match) {
			out = append(out, r.Insight)
			break
		}
	}
	return out
}
