package models

import (
	"strings"
	"time"
)

// Sheet and table names shared by the spreadsheet and the database.
const (
	TableBookings     = "reservas"
	TableClients      = "clientes"
	TableDestinations = "destinos"
)

// Booking is one sale. Client and Destination hold names, not enforced
// foreign keys: a booking may reference a client that was never imported.
type Booking struct {
	ID          int64      `gorm:"column:id_reserva;primaryKey;autoIncrement:false" json:"id_reserva"`
	BookedAt    *time.Time `gorm:"column:dt_reserva;type:timestamp" json:"dt_reserva"`
	DepartureAt *time.Time `gorm:"column:dt_embarque;type:timestamp" json:"dt_embarque"`
	Client      string     `gorm:"column:cliente;index" json:"cliente"`
	Destination string     `gorm:"column:destino;index" json:"destino"`
	Revenue     *float64   `gorm:"column:receita;type:double precision" json:"receita"`
	Cost        *float64   `gorm:"column:custo;type:double precision" json:"custo"`
	Channel     string     `gorm:"column:canal_venda;index" json:"canal_venda"`
	Salesperson string     `gorm:"column:vendedor" json:"vendedor"`
	TripType    string     `gorm:"column:tipo_viagem" json:"tipo_viagem"`
}

func (Booking) TableName() string { return TableBookings }


// OnlineChannel is the normalized name reported for online sales.
const OnlineChannel = "Online"

// OnlineChannelVariants are the lowercased spellings treated as online.
var OnlineChannelVariants = []string{"online", "on-line"}

// IsOnlineChannel reports whether channel is a spelling of the online channel.
func IsOnlineChannel(channel string) bool {
	c := strings.ToLower(strings.TrimSpace(channel))
	for _, v := range OnlineChannelVariants {
		if c == v {
			return true
		}
	}
	return false
}

// BookingListing is a booking joined with its client's attributes.
type BookingListing struct {
	Booking
	ClientType       string `gorm:"column:tipo_cliente" json:"tipo_cliente"`
	Region           string `gorm:"column:uf" json:"uf"`
	PartnershipYears *int   `gorm:"column:tempo_parceria_anos" json:"tempo_parceria_anos"`
}
