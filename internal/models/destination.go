package models

// Destination is a travel destination with its reporting-year exchange rate.
type Destination struct {
	Name         string   `gorm:"column:destino;primaryKey" json:"destino"`
	Continent    string   `gorm:"column:continente" json:"continente"`
	Country      string   `gorm:"column:pais" json:"pais"`
	ExchangeRate *float64 `gorm:"column:cambio_medio_2024;type:double precision" json:"cambio_medio_2024"`
}

func (Destination) TableName() string { return "destinos" }
