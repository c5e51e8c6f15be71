package model

import (
	"time"
)

// A Company operates Planes and Trips. Its name is the natural key seed data
// and the CLI use to refer to it.
type Company struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;type:VARCHAR;unique"`
}

func (Company) TableName() string { return "Company" }

// A Plane belongs to a Company and has a fixed number of seats numbered 1..Seats.
type Plane struct {
	ID        uint   `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name;type:VARCHAR;unique"`
	CompanyID *uint  `gorm:"column:company_id;type:INTEGER"` // nullable, no FK constraint
	Seats     int    `gorm:"column:seats;type:INTEGER"`
}

func (Plane) TableName() string { return "Plane" }

// A Trip is one flight of a Plane between two towns.
//
// CompanyID and PlaneID stay nil when the seed data named a Company or Plane
// that does not exist.
type Trip struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	CompanyID *uint     `gorm:"column:company_id;type:INTEGER"`
	PlaneID   *uint     `gorm:"column:plane_id;type:INTEGER"`
	TimeOut   time.Time `gorm:"column:time_out;type:TIMESTAMP"`
	TimeIn    time.Time `gorm:"column:time_in;type:TIMESTAMP"`
	TownOut   string    `gorm:"column:town_out;type:VARCHAR"`
	TownIn    string    `gorm:"column:town_in;type:VARCHAR"`
}

func (Trip) TableName() string { return "Trip" }

type Passenger struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;type:VARCHAR;unique"`
}

func (Passenger) TableName() string { return "Passenger" }

// Taken is a seat assignment: Passenger sits in Place on Trip.
// Nothing in the schema stops the same place being assigned twice; the store
// checks that before inserting.
type Taken struct {
	ID          uint  `gorm:"column:id;primaryKey"`
	TripID      *uint `gorm:"column:trip_id;type:INTEGER"`
	PassengerID *uint `gorm:"column:passenger_id;type:INTEGER"`
	Place       int   `gorm:"column:place;type:INTEGER"`
}

func (Taken) TableName() string { return "Taken" }

// AllModels returns every table model in creation order.
func AllModels() []interface{} {
	return []interface{}{
		&Trip{},
		&Plane{},
		&Company{},
		&Passenger{},
		&Taken{},
	}
}

// TableNames lists the tables AllModels creates, in the same order.
var TableNames = []string{"Trip", "Plane", "Company", "Passenger", "Taken"}
