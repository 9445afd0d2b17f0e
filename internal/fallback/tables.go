package fallback

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soilsmart/soilsmart/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

type fertilizerBand struct {
	Below float64                         `yaml:"below"`
	Item  domain.FertilizerRecommendation `yaml:"item"`
}

type nutrientBands struct {
	Nutrient string           `yaml:"nutrient"`
	Bands    []fertilizerBand `yaml:"bands"`
}

type tables struct {
	Crops              []domain.CropCandidate `yaml:"crops"`
	Preferences        map[string][]string    `yaml:"preferences"`
	TexturePreferences map[string][]string    `yaml:"texturePreferences"`
	Fertilizers        struct {
		Nutrients []nutrientBands                   `yaml:"nutrients"`
		Always    []domain.FertilizerRecommendation `yaml:"always"`
	} `yaml:"fertilizers"`
}

// catalog is loaded once at startup and never mutated.
var catalog = mustLoadTables(catalogYAML)

func mustLoadTables(data []byte) *tables {
	t, err := loadTables(data)
	if err != nil {
		panic(fmt.Sprintf("fallback: %v", err))
	}
	return t
}

func loadTables(data []byte) (*tables, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(t.Crops) == 0 {
		return nil, fmt.Errorf("catalog has no crops")
	}
	for _, c := range t.Crops {
		if len(c.PHRange) != 2 || c.PHRange[0] > c.PHRange[1] {
			return nil, fmt.Errorf("crop %q: phRange must be [min, max]", c.CropName)
		}
	}
	for _, n := range t.Fertilizers.Nutrients {
		switch n.Nutrient {
		case "nitrogen", "phosphorus", "potassium":
		default:
			return nil, fmt.Errorf("unknown nutrient %q", n.Nutrient)
		}
	}
	prefs := make(map[string][]string, len(t.Preferences))
	for k, v := range t.Preferences {
		prefs[strings.ToLower(k)] = v
	}
	t.Preferences = prefs
	return &t, nil
}

// Catalog returns a copy of the crop catalog in declaration order.
func Catalog() []domain.CropCandidate {
	out := make([]domain.CropCandidate, len(catalog.Crops))
	for i, c := range catalog.Crops {
		out[i] = cloneCrop(c)
	}
	return out
}

func cloneCrop(c domain.CropCandidate) domain.CropCandidate {
	c.PHRange = append([]float64(nil), c.PHRange...)
	c.Seasons = append([]string(nil), c.Seasons...)
	return c
}
