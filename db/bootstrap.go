package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"aerodb/model"
	"aerodb/seed"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BootstrapOptions tunes BootstrapSQLite.
type BootstrapOptions struct {
	Logger *zap.SugaredLogger
	// Strict makes an unresolved seed reference abort the load. Otherwise the
	// reference is logged, recorded in the report and the row is loaded the
	// way the plain SQL seeder would have loaded it.
	Strict bool
}

// UnresolvedRef is a seed record naming a row that does not exist.
type UnresolvedRef struct {
	Table string // table being loaded
	Index int    // position of the record in its collection
	Field string // company, plane or passenger
	Name  string
}

func (r UnresolvedRef) String() string {
	return fmt.Sprintf("%s record %d refers to unknown %s %q", r.Table, r.Index, r.Field, r.Name)
}

// SeedReport counts the rows loaded into each table.
type SeedReport struct {
	Passengers int
	Companies  int
	Planes     int
	Trips      int
	Taken      int
	Unresolved []UnresolvedRef
}

// BootstrapSQLite rebuilds the database file at dbPath from scratch and loads data into it.
//
// The parent directory of dbPath must exist. Whatever is at dbPath is removed first.
// The schema is created and, unless data is nil, the dataset is loaded in one
// transaction: passengers and companies, then planes, trips and seat assignments
// with their names resolved to ids. The connection is released before returning.
//
// Without opts.Strict an unknown company on a plane or an unknown passenger on a
// seat assignment drops that record, and an unknown company or plane on a trip
// leaves the column NULL.
func BootstrapSQLite(ctx context.Context, dbPath string, data *seed.Dataset, opts BootstrapOptions) (report *SeedReport, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	dir := filepath.Dir(dbPath)
	if info, statErr := os.Stat(dir); dbPath == "" || statErr != nil || !info.IsDir() {
		return nil, &PathError{Path: dbPath, Dir: dir}
	}
	if err := removeExisting(dbPath); err != nil {
		return nil, err
	}

	dbConn, err := openSQLite(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		if cerr := Close(dbConn); cerr != nil && err == nil {
			err = fmt.Errorf("bootstrap: failed to close DB: %w", cerr)
		}
	}()
	dbConn = dbConn.WithContext(ctx)

	if err := dbConn.AutoMigrate(model.AllModels()...); err != nil {
		return nil, fmt.Errorf("bootstrap: auto-migration failed: %w", err)
	}

	if data == nil {
		logger.Infow("bootstrap: database schema created but no seed data loaded", "path", dbPath)
		return &SeedReport{}, nil
	}

	l := &loader{logger: logger, strict: opts.Strict, report: &SeedReport{}}
	if err := dbConn.Transaction(func(tx *gorm.DB) error {
		return l.load(tx, data)
	}); err != nil {
		return nil, fmt.Errorf("bootstrap: failed to load seed data: %w", err)
	}

	logger.Infow("bootstrap: completed and loaded seed data",
		"path", dbPath,
		"passengers", l.report.Passengers,
		"companies", l.report.Companies,
		"planes", l.report.Planes,
		"trips", l.report.Trips,
		"taken", l.report.Taken,
		"unresolved", len(l.report.Unresolved),
	)
	return l.report, nil
}

func removeExisting(dbPath string) error {
	info, err := os.Stat(dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap: stat %s: %w", dbPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("bootstrap: %s is a directory", dbPath)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("bootstrap: failed to remove existing database: %w", err)
	}
	return nil
}

type loader struct {
	logger *zap.SugaredLogger
	strict bool
	report *SeedReport
}

// unresolved records ref, failing in strict mode.
func (l *loader) unresolved(ref UnresolvedRef) error {
	if l.strict {
		return fmt.Errorf("%w: %s", ErrUnresolvedReference, ref)
	}
	l.logger.Warnw("unresolved seed reference",
		"table", ref.Table,
		"index", ref.Index,
		"field", ref.Field,
		"name", ref.Name,
	)
	l.report.Unresolved = append(l.report.Unresolved, ref)
	return nil
}

// load runs the five passes. Each pass only reads ids written by earlier ones.
func (l *loader) load(tx *gorm.DB, data *seed.Dataset) error {
	store := NewSQLStore(tx)

	passengers := make([]model.Passenger, 0, len(data.Passengers))
	for _, name := range data.Passengers {
		passengers = append(passengers, model.Passenger{Name: name})
	}
	if err := insert(tx, "Passenger", passengers); err != nil {
		return err
	}
	l.report.Passengers = len(passengers)

	companies := make([]model.Company, 0, len(data.Companies))
	for _, name := range data.Companies {
		companies = append(companies, model.Company{Name: name})
	}
	if err := insert(tx, "Company", companies); err != nil {
		return err
	}
	l.report.Companies = len(companies)

	companyIDs, err := store.GetCompanyIDMap()
	if err != nil {
		return err
	}
	passengerIDs, err := store.GetPassengerIDMap()
	if err != nil {
		return err
	}

	planes := make([]model.Plane, 0, len(data.Planes))
	for i, p := range data.Planes {
		cid, ok := companyIDs[p.Company]
		if !ok {
			if err := l.unresolved(UnresolvedRef{Table: "Plane", Index: i, Field: "company", Name: p.Company}); err != nil {
				return err
			}
			continue
		}
		planes = append(planes, model.Plane{Name: p.Name, CompanyID: &cid, Seats: p.Seats})
	}
	if err := insert(tx, "Plane", planes); err != nil {
		return err
	}
	l.report.Planes = len(planes)

	planeIDs, err := store.GetPlaneIDMap()
	if err != nil {
		return err
	}

	trips := make([]model.Trip, 0, len(data.Trips))
	for i, t := range data.Trips {
		trip := model.Trip{TimeOut: t.TimeOut, TimeIn: t.TimeIn, TownOut: t.TownOut, TownIn: t.TownIn}
		if cid, ok := companyIDs[t.Company]; ok {
			trip.CompanyID = &cid
		} else if err := l.unresolved(UnresolvedRef{Table: "Trip", Index: i, Field: "company", Name: t.Company}); err != nil {
			return err
		}
		if pid, ok := planeIDs[t.Plane]; ok {
			trip.PlaneID = &pid
		} else if err := l.unresolved(UnresolvedRef{Table: "Trip", Index: i, Field: "plane", Name: t.Plane}); err != nil {
			return err
		}
		trips = append(trips, trip)
	}
	if err := insert(tx, "Trip", trips); err != nil {
		return err
	}
	l.report.Trips = len(trips)

	taken := make([]model.Taken, 0, len(data.Taken))
	for i, t := range data.Taken {
		pid, ok := passengerIDs[t.Passenger]
		if !ok {
			if err := l.unresolved(UnresolvedRef{Table: "Taken", Index: i, Field: "passenger", Name: t.Passenger}); err != nil {
				return err
			}
			continue
		}
		tripID := t.TripID
		taken = append(taken, model.Taken{TripID: &tripID, PassengerID: &pid, Place: t.Place})
	}
	if err := insert(tx, "Taken", taken); err != nil {
		return err
	}
	l.report.Taken = len(taken)

	return nil
}

func insert[T any](tx *gorm.DB, table string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
