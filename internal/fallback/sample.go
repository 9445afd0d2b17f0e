package fallback

import "github.com/soilsmart/soilsmart/internal/domain"

// NewSample builds a SoilSample from raw parameters. Numbers are clamped
// into their valid domains, unknown texture and moisture labels take the
// defaults, and the health score and advice are derived from the result.
func NewSample(ph, om, n, p, k float64, texture domain.Texture, moisture domain.Moisture) domain.SoilSample {
	if t, ok := domain.ParseTexture(string(texture)); ok {
		texture = t
	} else {
		texture = domain.TextureLoam
	}
	if m, ok := domain.ParseMoisture(string(moisture)); ok {
		moisture = m
	} else {
		moisture = domain.MoistureMedium
	}

	s := domain.SoilSample{
		PHLevel:       phSpec.clamp(ph),
		OrganicMatter: organicMatterSpec.clamp(om),
		Nitrogen:      nitrogenSpec.clamp(n),
		Phosphorus:    phosphorusSpec.clamp(p),
		Potassium:     potassiumSpec.clamp(k),
		SoilTexture:   texture,
		MoistureLevel: moisture,
	}
	s.SoilHealthScore = Score(s.PHLevel, s.OrganicMatter, s.Nitrogen, s.Phosphorus, s.Potassium, s.SoilTexture)
	s.Recommendations = Recommend(s.PHLevel, s.OrganicMatter, s.SoilTexture, s.Nitrogen, s.Phosphorus, s.Potassium)
	return s
}

// Normalize re-derives a sample produced elsewhere (the LLM). Fields are
// clamped and the score recomputed; the producer's advice is kept when it
// gave any.
func Normalize(in domain.SoilSample) domain.SoilSample {
	s := NewSample(in.PHLevel, in.OrganicMatter, in.Nitrogen, in.Phosphorus, in.Potassium, in.SoilTexture, in.MoistureLevel)
	if len(in.Recommendations) > 0 {
		s.Recommendations = append([]string(nil), in.Recommendations...)
	}
	return s
}

// FromInput builds a sample from client-supplied soil data. Absent numeric
// fields take the extraction defaults.
func FromInput(in domain.SoilDataInput) domain.SoilSample {
	return NewSample(
		valueOr(in.PHLevel, phSpec.def),
		valueOr(in.OrganicMatter, organicMatterSpec.def),
		valueOr(in.Nitrogen, nitrogenSpec.def),
		valueOr(in.Phosphorus, phosphorusSpec.def),
		valueOr(in.Potassium, potassiumSpec.def),
		domain.Texture(in.SoilTexture),
		domain.Moisture(in.MoistureLevel),
	)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
