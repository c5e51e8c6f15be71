package db

import (
	"errors"
	"fmt"
	"os"

	"aerodb/logging"
	"aerodb/model"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrSameCompany is returned by DelCompany when a company is named as its own heir.
var ErrSameCompany = errors.New("company cannot inherit from itself")

type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Open opens the existing aerodb file at path.
func Open(path string, logger *zap.SugaredLogger) (*gorm.DB, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrFile, path)
	}
	return openSQLite(path, logger)
}

// openSQLite opens path on a single connection.
func openSQLite(path string, logger *zap.SugaredLogger) (*gorm.DB, error) {
	dbConn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logging.GormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return dbConn, nil
}

// Close releases the connection held by dbConn.
func Close(dbConn *gorm.DB) error {
	sqlDB, err := dbConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) AddPassenger(name string) error {
	err := s.db.Create(&model.Passenger{Name: name}).Error
	if isConstraintErr(err) {
		return fmt.Errorf("passenger %q: %w", name, ErrAlreadyIn)
	}
	return err
}

func (s *SQLStore) AddCompany(name string) error {
	err := s.db.Create(&model.Company{Name: name}).Error
	if isConstraintErr(err) {
		return fmt.Errorf("company %q: %w", name, ErrAlreadyIn)
	}
	return err
}

// DelCompany removes the company called name. Its planes and trips are handed
// over to heir first.
func (s *SQLStore) DelCompany(name, heir string) error {
	if name == heir {
		return ErrSameCompany
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		from, err := companyID(tx, name)
		if err != nil {
			return err
		}
		to, err := companyID(tx, heir)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Plane{}).Where("company_id = ?", from).Update("company_id", to).Error; err != nil {
			return fmt.Errorf("reassign planes of %q: %w", name, err)
		}
		if err := tx.Model(&model.Trip{}).Where("company_id = ?", from).Update("company_id", to).Error; err != nil {
			return fmt.Errorf("reassign trips of %q: %w", name, err)
		}
		return tx.Delete(&model.Company{}, from).Error
	})
}

func (s *SQLStore) AddPlane(name, companyName string, seats int) error {
	if seats <= 0 {
		return ErrSeatRange
	}
	cid, err := companyID(s.db, companyName)
	if err != nil {
		return err
	}
	err = s.db.Create(&model.Plane{Name: name, CompanyID: &cid, Seats: seats}).Error
	if isConstraintErr(err) {
		return fmt.Errorf("plane %q: %w", name, ErrAlreadyIn)
	}
	return err
}

// DelPlane removes a plane together with every trip it flies.
func (s *SQLStore) DelPlane(name string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var plane model.Plane
		if err := tx.Where("name = ?", name).First(&plane).Error; err != nil {
			return notFound(err)
		}
		var tripIDs []uint
		if err := tx.Model(&model.Trip{}).Where("plane_id = ?", plane.ID).Pluck("id", &tripIDs).Error; err != nil {
			return err
		}
		for _, id := range tripIDs {
			if err := endTrip(tx, id); err != nil {
				return err
			}
		}
		return tx.Delete(&model.Plane{}, plane.ID).Error
	})
}

// PlanTrip inserts trip and returns its id. Company and plane, when set, must exist.
func (s *SQLStore) PlanTrip(trip model.Trip) (uint, error) {
	if !trip.TimeOut.Before(trip.TimeIn) {
		return 0, ErrIncorrectTime
	}
	if trip.CompanyID != nil {
		if err := s.db.First(&model.Company{}, *trip.CompanyID).Error; err != nil {
			return 0, notFound(err)
		}
	}
	if trip.PlaneID != nil {
		if err := s.db.First(&model.Plane{}, *trip.PlaneID).Error; err != nil {
			return 0, notFound(err)
		}
	}
	trip.ID = 0
	if err := s.db.Create(&trip).Error; err != nil {
		return 0, err
	}
	return trip.ID, nil
}

// EndTrip removes a trip and its seat assignments.
func (s *SQLStore) EndTrip(tripID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return endTrip(tx, tripID)
	})
}

func endTrip(tx *gorm.DB, tripID uint) error {
	if err := tx.First(&model.Trip{}, tripID).Error; err != nil {
		return notFound(err)
	}
	if err := tx.Where("trip_id = ?", tripID).Delete(&model.Taken{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Trip{}, tripID).Error
}

func (s *SQLStore) GetAllTrips() ([]model.Trip, error) {
	trips := []model.Trip{}
	err := s.db.Order("id").Find(&trips).Error
	return trips, err
}

// GetTrips returns the trips flying from one town to another.
func (s *SQLStore) GetTrips(from, to string) ([]model.Trip, error) {
	trips := []model.Trip{}
	err := s.db.Where("town_out = ? AND town_in = ?", from, to).Order("id").Find(&trips).Error
	return trips, err
}

// GetFreeSeats returns the unassigned seat numbers of a trip in ascending order.
func (s *SQLStore) GetFreeSeats(tripID uint) ([]int, error) {
	seats, err := tripSeats(s.db, tripID)
	if err != nil {
		return nil, err
	}
	var places []int
	if err := s.db.Model(&model.Taken{}).Where("trip_id = ?", tripID).Pluck("place", &places).Error; err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(places))
	for _, p := range places {
		taken[p] = true
	}
	free := make([]int, 0, seats)
	for i := 1; i <= seats; i++ {
		if !taken[i] {
			free = append(free, i)
		}
	}
	return free, nil
}

func (s *SQLStore) TakeSeat(tripID uint, passenger string, seat int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		pid, err := passengerID(tx, passenger)
		if err != nil {
			return err
		}
		seats, err := tripSeats(tx, tripID)
		if err != nil {
			return err
		}
		if seat < 1 || seat > seats {
			return ErrSeatRange
		}
		var n int64
		if err := tx.Model(&model.Taken{}).Where("trip_id = ? AND place = ?", tripID, seat).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyTaken
		}
		return tx.Create(&model.Taken{TripID: &tripID, PassengerID: &pid, Place: seat}).Error
	})
}

// GetCompanyIDMap returns company ids keyed by name.
func (s *SQLStore) GetCompanyIDMap() (map[string]uint, error) {
	var companies []model.Company
	if err := s.db.Find(&companies).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(companies))
	for _, c := range companies {
		m[c.Name] = c.ID
	}
	return m, nil
}

// GetPassengerIDMap returns passenger ids keyed by name.
func (s *SQLStore) GetPassengerIDMap() (map[string]uint, error) {
	var passengers []model.Passenger
	if err := s.db.Find(&passengers).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(passengers))
	for _, p := range passengers {
		m[p.Name] = p.ID
	}
	return m, nil
}

// GetPlaneIDMap returns plane ids keyed by name.
func (s *SQLStore) GetPlaneIDMap() (map[string]uint, error) {
	var planes []model.Plane
	if err := s.db.Find(&planes).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(planes))
	for _, p := range planes {
		m[p.Name] = p.ID
	}
	return m, nil
}

// CountRows returns the number of rows in each table, keyed by table name.
func (s *SQLStore) CountRows() (map[string]int64, error) {
	counts := make(map[string]int64, len(model.TableNames))
	for _, table := range model.TableNames {
		var n int64
		if err := s.db.Table(table).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func companyID(tx *gorm.DB, name string) (uint, error) {
	var c model.Company
	if err := tx.Where("name = ?", name).First(&c).Error; err != nil {
		return 0, notFound(err)
	}
	return c.ID, nil
}

func passengerID(tx *gorm.DB, name string) (uint, error) {
	var p model.Passenger
	if err := tx.Where("name = ?", name).First(&p).Error; err != nil {
		return 0, notFound(err)
	}
	return p.ID, nil
}

// tripSeats returns the seat count of the plane flying tripID.
func tripSeats(tx *gorm.DB, tripID uint) (int, error) {
	var trip model.Trip
	if err := tx.First(&trip, tripID).Error; err != nil {
		return 0, notFound(err)
	}
	if trip.PlaneID == nil {
		return 0, fmt.Errorf("trip %d has no plane: %w", tripID, ErrNotFound)
	}
	var plane model.Plane
	if err := tx.First(&plane, *trip.PlaneID).Error; err != nil {
		return 0, notFound(err)
	}
	return plane.Seats, nil
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
