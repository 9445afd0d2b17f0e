// Package irrigation sizes irrigation systems: seasonal water requirement,
// operating cost and savings per method, and a method recommendation for a
// soil and crop.
package irrigation

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed methods.yaml
var methodsYAML []byte

const (
	SeasonKharif = "Kharif"
	SeasonRabi   = "Rabi"
	SeasonZaid   = "Zaid"
)

// ErrUnknownMethod is returned for a method key not in the table.
var ErrUnknownMethod = errors.New("unknown irrigation method")

// Seasons in calendar order.
var Seasons = []string{SeasonKharif, SeasonRabi, SeasonZaid}

// Method describes one irrigation system.
type Method struct {
	Key             string           `json:"key" yaml:"key"`
	Name            string           `json:"name" yaml:"name"`
	Description     string           `json:"description" yaml:"description"`
	WaterEfficiency int              `json:"waterEfficiency" yaml:"waterEfficiency"`
	OperatingCost   float64          `json:"operatingCost" yaml:"operatingCost"`
	SuitableCrops   []string         `json:"suitableCrops" yaml:"suitableCrops"`
	SuitableSoils   []string         `json:"suitableSoils" yaml:"suitableSoils"`
	InitialCost     string           `json:"initialCost" yaml:"initialCost"`
	WaterSaving     string           `json:"waterSaving" yaml:"waterSaving"`
	Advantages      []string         `json:"advantages" yaml:"advantages"`
	Disadvantages   []string         `json:"disadvantages" yaml:"disadvantages"`
	MonthlyWaterReq map[string][]int `json:"monthlyWaterReq" yaml:"monthlyWaterReq"`
}

type table struct {
	Methods     []Method           `yaml:"methods"`
	SoilFactors map[string]float64 `yaml:"soilFactors"`
	CropFactors map[string]float64 `yaml:"cropFactors"`
}

var methods = mustLoad(methodsYAML)

func mustLoad(data []byte) *table {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		panic(fmt.Sprintf("irrigation: parse methods: %v", err))
	}
	for _, m := range t.Methods {
		for _, s := range Seasons {
			if len(m.MonthlyWaterReq[s]) != 12 {
				panic(fmt.Sprintf("irrigation: %s %s: want 12 monthly values", m.Key, s))
			}
		}
	}
	return &t
}

// Methods returns the method table in display order.
func Methods() []Method {
	return slices.Clone(methods.Methods)
}

func lookup(key string) (Method, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, m := range methods.Methods {
		if m.Key == key {
			return m, true
		}
	}
	return Method{}, false
}

// soilKey maps soil texture labels ("Sand", "sandy", "LOAM") to the factor
// table's keys.
func soilKey(soil string) string {
	switch strings.ToLower(strings.TrimSpace(soil)) {
	case "sand", "sandy":
		return "Sandy"
	case "loam", "loamy":
		return "Loam"
	case "clay", "clayey":
		return "Clay"
	case "silt", "silty":
		return "Silt"
	}
	return ""
}

func cropKey(crop string) string {
	crop = strings.TrimSpace(crop)
	for k := range methods.CropFactors {
		if strings.EqualFold(k, crop) {
			return k
		}
	}
	return crop
}

func seasonKey(season string) string {
	for _, s := range Seasons {
		if strings.EqualFold(s, strings.TrimSpace(season)) {
			return s
		}
	}
	return SeasonKharif
}

func factor(table map[string]float64, key string) float64 {
	if f, ok := table[key]; ok {
		return f
	}
	return 1.0
}

// Plan is the water budget for one method, crop, soil and season.
type Plan struct {
	Method      string  `json:"method"`
	MethodName  string  `json:"methodName"`
	Season      string  `json:"season"`
	MonthlyReq  []int   `json:"monthlyReq"`
	TotalAnnual int     `json:"totalAnnual"`
	PeakMonth   int     `json:"peakMonth"`
	CostPerYear int     `json:"costPerYear"`
	Efficiency  int     `json:"efficiency"`
	WaterSaved  float64 `json:"waterSaved"`
}

// NewPlan computes the water budget. Unknown seasons use Kharif; unknown
// soils and crops use a factor of 1.
func NewPlan(method, crop, soil, season string, area float64) (Plan, error) {
	m, ok := lookup(method)
	if !ok {
		return Plan{}, fmt.Errorf("%w %q", ErrUnknownMethod, method)
	}
	season = seasonKey(season)
	sf := factor(methods.SoilFactors, soilKey(soil))
	cf := factor(methods.CropFactors, cropKey(crop))

	base := m.MonthlyWaterReq[season]
	p := Plan{
		Method:     m.Key,
		MethodName: m.Name,
		Season:     season,
		MonthlyReq: make([]int, len(base)),
		Efficiency: m.WaterEfficiency,
	}
	for i, v := range base {
		req := int(math.Round(float64(v) * sf * cf * area))
		p.MonthlyReq[i] = req
		p.TotalAnnual += req
		p.PeakMonth = max(p.PeakMonth, req)
	}
	p.CostPerYear = int(math.Round(float64(p.TotalAnnual) * m.OperatingCost))
	p.WaterSaved = float64(p.TotalAnnual) * (1 - float64(m.WaterEfficiency)/100)
	return p, nil
}

// Seasonal returns one plan per season.
func Seasonal(method, crop, soil string, area float64) ([]Plan, error) {
	out := make([]Plan, 0, len(Seasons))
	for _, s := range Seasons {
		p, err := NewPlan(method, crop, soil, s, area)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// RecommendMethod picks a method key for a soil and crop.
func RecommendMethod(soil, crop string) string {
	sk := soilKey(soil)
	ck := cropKey(crop)
	switch {
	case sk == "Sandy" && (ck == "Vegetables" || strings.EqualFold(ck, "Fruits")):
		return "drip"
	case sk == "Clay" && ck == "Rice":
		return "flood"
	case ck == "Wheat" || ck == "Maize":
		return "sprinkler"
	case ck == "Cotton" || ck == "Sugarcane":
		return "furrow"
	}
	return "drip"
}

// Report bundles a method's details with its plan for the requested season
// and for every season.
type Report struct {
	Recommended string `json:"recommendedMethod"`
	Method      Method `json:"method"`
	Plan        Plan   `json:"plan"`
	Seasonal    []Plan `json:"seasonal"`
}

// Build plans the given method, or the recommended one when method is empty.
func Build(method, crop, soil, season string, area float64) (Report, error) {
	rec := RecommendMethod(soil, crop)
	if strings.TrimSpace(method) == "" {
		method = rec
	}
	m, ok := lookup(method)
	if !ok {
		return Report{}, fmt.Errorf("%w %q", ErrUnknownMethod, method)
	}
	plan, err := NewPlan(m.Key, crop, soil, season, area)
	if err != nil {
		return Report{}, err
	}
	seasonal, err := Seasonal(m.Key, crop, soil, area)
	if err != nil {
		return Report{}, err
	}
	return Report{Recommended: rec, Method: m, Plan: plan, Seasonal: seasonal}, nil
}
