package db

import (
	"aerodb/model"
)

type Store interface {
	AddPassenger(name string) error
	AddCompany(name string) error
	DelCompany(name, heir string) error
	AddPlane(name, companyName string, seats int) error
	DelPlane(name string) error
	PlanTrip(trip model.Trip) (uint, error)
	EndTrip(tripID uint) error
	GetAllTrips() ([]model.Trip, error)
	GetTrips(from, to string) ([]model.Trip, error)
	GetFreeSeats(tripID uint) ([]int, error)
	TakeSeat(tripID uint, passenger string, seat int) error
	GetCompanyIDMap() (map[string]uint, error)
	GetPassengerIDMap() (map[string]uint, error)
	GetPlaneIDMap() (map[string]uint, error)
	CountRows() (map[string]int64, error)
}

var _ Store = (*SQLStore)(nil)
