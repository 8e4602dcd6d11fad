package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Seed documento de carga inicial: catálogo, stock de apertura, centros de trabajo y BOMs.
// Las cantidades y costos se leen como texto para no perder precisión decimal.
type Seed struct {
	Products    []SeedProduct    `mapstructure:"products"`
	WorkCenters []SeedWorkCenter `mapstructure:"work_centers"`
	BOMs        []SeedBOM        `mapstructure:"boms"`
}

// SeedProduct producto con stock de apertura opcional.
type SeedProduct struct {
	Name          string `mapstructure:"name"`
	Type          string `mapstructure:"type"`
	UnitOfMeasure string `mapstructure:"unit_of_measure"`
	UnitCost      string `mapstructure:"unit_cost"`
	OpeningStock  string `mapstructure:"opening_stock"`
}

// SeedWorkCenter centro de trabajo.
type SeedWorkCenter struct {
	Name        string `mapstructure:"name"`
	Capacity    int    `mapstructure:"capacity"`
	CostPerHour string `mapstructure:"cost_per_hour"`
}

// SeedBOM lista de materiales referenciada por nombre de producto.
type SeedBOM struct {
	Product    string              `mapstructure:"product"`
	Components []SeedBOMComponent `mapstructure:"components"`
}

// SeedBOMComponent línea de una BOM del seed.
type SeedBOMComponent struct {
	Product  string `mapstructure:"product"`
	Quantity string `mapstructure:"quantity"`
	Unit     string `mapstructure:"unit"`
}

// LoadSeed lee un documento de seed (YAML, JSON o TOML según extensión).
func LoadSeed(path string) (*Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer seed %s: %w", path, err)
	}
	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("decodificar seed %s: %w", path, err)
	}
	return &seed, nil
}
