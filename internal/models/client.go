package models

// Client is an agency customer, keyed by its display name.
type Client struct {
	Name             string `gorm:"column:cliente;primaryKey" json:"cliente"`
	Type             string `gorm:"column:tipo_cliente" json:"tipo_cliente"`
	Region           string `gorm:"column:uf;index" json:"uf"` // Brazilian state code
	PartnershipYears *int   `gorm:"column:tempo_parceria_anos" json:"tempo_parceria_anos"`
}

// TableName pins the table name used by imports and queries.
func (Client) TableName() string { return "clientes" }
