package models

// Result rows of the analytical queries. Column and JSON names match the
// SQL aliases.

type MonthlyRollup struct {
	Month         string  `gorm:"column:mes" json:"mes"` // YYYY-MM
	TotalBookings int64   `gorm:"column:total_reservas" json:"total_reservas"`
	TotalRevenue  float64 `gorm:"column:receita_total" json:"receita_total"`
	TotalCost     float64 `gorm:"column:custo_total" json:"custo_total"`
	TotalMargin   float64 `gorm:"column:margem_total" json:"margem_total"`
}

type DestinationMargin struct {
	Destination   string  `gorm:"column:destino" json:"destino"`
	TotalBookings int64   `gorm:"column:total_reservas" json:"total_reservas"`
	AverageMargin float64 `gorm:"column:margem_media" json:"margem_media"`
}

type ChannelRevenue struct {
	ClientType   string  `gorm:"column:tipo_cliente" json:"tipo_cliente"`
	Channel      string  `gorm:"column:canal_venda_padronizado" json:"canal_venda_padronizado"`
	TotalRevenue float64 `gorm:"column:receita_total" json:"receita_total"`
	SharePercent float64 `gorm:"column:participacao_percentual" json:"participacao_percentual"`
}

// ClientGrowth compares a client's first and second semester revenue.
type ClientGrowth struct {
	Client        string  `gorm:"column:cliente" json:"cliente"`
	RevenueH1     float64 `gorm:"column:receita_h1" json:"receita_h1"`
	RevenueH2     float64 `gorm:"column:receita_h2" json:"receita_h2"`
	GrowthPercent float64 `gorm:"column:crescimento_percentual" json:"crescimento_percentual"`
}

// LoyaltyScore is in [0, 100].
type LoyaltyScore struct {
	Client     string  `gorm:"column:cliente" json:"cliente"`
	ClientType string  `gorm:"column:tipo_cliente" json:"tipo_cliente"`
	Region     string  `gorm:"column:uf" json:"uf"`
	Score      float64 `gorm:"column:score_fidelidade" json:"score_fidelidade"`
}

type DestinationProfitability struct {
	Destination   string  `gorm:"column:destino" json:"destino"`
	Country       string  `gorm:"column:pais" json:"pais"`
	Continent     string  `gorm:"column:continente" json:"continente"`
	AverageMargin float64 `gorm:"column:margem_media" json:"margem_media"`
}
