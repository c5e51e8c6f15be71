package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"aerodb/config"
	"aerodb/db"
	"aerodb/logging"
	"aerodb/model"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	dbKey         = "db"
	defaultDBPath = "aero.sqlite3"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

// run executes one aeroctl command and closes the database afterwards.
func run(args []string, out io.Writer) (err error) {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	defer func() {
		if a.dbConn != nil {
			err = errors.Join(err, db.Close(a.dbConn))
		}
	}()
	return cmd.Execute()
}

// app holds the store opened for the running subcommand.
type app struct {
	dbConn *gorm.DB
	store  *db.SQLStore
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aeroctl",
		Short:         "Manage passengers, companies, planes, trips and seats in an aerodb database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.dbConn, err = db.Open(v.GetString(dbKey), logger)
			if err != nil {
				return err
			}
			a.store = db.NewSQLStore(a.dbConn)
			return nil
		},
	}
	rootCmd.PersistentFlags().String(dbKey, defaultDBPath, "Path to SQLite database file")
	rootCmd.PersistentFlags().String(config.LogLevelKey, "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "add-passenger <name>",
			Short: "Register a passenger",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.AddPassenger(args[0])
			},
		},
		&cobra.Command{
			Use:   "add-company <name>",
			Short: "Register a company",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.AddCompany(args[0])
			},
		},
		&cobra.Command{
			Use:   "del-company <name> <heir>",
			Short: "Delete a company, handing its planes and trips to heir",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.DelCompany(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "add-plane <name> <company> <seats>",
			Short: "Register a plane for a company",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				seats, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid seat count %q: %w", args[2], err)
				}
				return a.store.AddPlane(args[0], args[1], seats)
			},
		},
		&cobra.Command{
			Use:   "del-plane <name>",
			Short: "Delete a plane and end every trip it flies",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.DelPlane(args[0])
			},
		},
		newPlanTripCmd(a),
		&cobra.Command{
			Use:   "end-trip <trip-id>",
			Short: "Remove a trip and its seat assignments",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return a.store.EndTrip(id)
			},
		},
		&cobra.Command{
			Use:   "trips [<from> <to>]",
			Short: "List trips, optionally only those between two towns",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) != 0 && len(args) != 2 {
					return fmt.Errorf("expected no arguments or <from> <to>, got %d arguments", len(args))
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				var trips []model.Trip
				var err error
				if len(args) == 2 {
					trips, err = a.store.GetTrips(args[0], args[1])
				} else {
					trips, err = a.store.GetAllTrips()
				}
				if err != nil {
					return err
				}
				for _, t := range trips {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-16s -> %-16s  %s  %s  company:%s  plane:%s\n",
						t.ID, t.TownOut, t.TownIn,
						t.TimeOut.UTC().Format(time.RFC3339), t.TimeIn.UTC().Format(time.RFC3339),
						formatID(t.CompanyID), formatID(t.PlaneID),
					)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "free-seats <trip-id>",
			Short: "List the free seats of a trip",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				seats, err := a.store.GetFreeSeats(id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), joinInts(seats))
				return nil
			},
		},
		&cobra.Command{
			Use:   "take-seat <trip-id> <passenger> <seat>",
			Short: "Assign a seat on a trip to a passenger",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				seat, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid seat %q: %w", args[2], err)
				}
				return a.store.TakeSeat(id, args[1], seat)
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show the number of rows in each table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				counts, err := a.store.CountRows()
				if err != nil {
					return err
				}
				for _, table := range model.TableNames {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", table, counts[table])
				}
				return nil
			},
		},
	)
	return rootCmd
}

func newPlanTripCmd(a *app) *cobra.Command {
	var company, plane, from, to, out, in string
	cmd := &cobra.Command{
		Use:   "plan-trip",
		Short: "Plan a new trip and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeOut, err := time.Parse(time.RFC3339, out)
			if err != nil {
				return fmt.Errorf("invalid --out: %w", err)
			}
			timeIn, err := time.Parse(time.RFC3339, in)
			if err != nil {
				return fmt.Errorf("invalid --in: %w", err)
			}
			trip := model.Trip{TimeOut: timeOut, TimeIn: timeIn, TownOut: from, TownIn: to}

			companies, err := a.store.GetCompanyIDMap()
			if err != nil {
				return err
			}
			cid, ok := companies[company]
			if !ok {
				return fmt.Errorf("company %q: %w", company, db.ErrNotFound)
			}
			trip.CompanyID = &cid

			planes, err := a.store.GetPlaneIDMap()
			if err != nil {
				return err
			}
			pid, ok := planes[plane]
			if !ok {
				return fmt.Errorf("plane %q: %w", plane, db.ErrNotFound)
			}
			trip.PlaneID = &pid

			id, err := a.store.PlanTrip(trip)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "Operating company")
	cmd.Flags().StringVar(&plane, "plane", "", "Plane name")
	cmd.Flags().StringVar(&from, "from", "", "Departure town")
	cmd.Flags().StringVar(&to, "to", "", "Arrival town")
	cmd.Flags().StringVar(&out, "out", "", "Departure time (RFC 3339)")
	cmd.Flags().StringVar(&in, "in", "", "Arrival time (RFC 3339)")
	for _, name := range []string{"company", "plane", "from", "to", "out", "in"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid trip id %q: %w", s, err)
	}
	return uint(id), nil
}

func formatID(id *uint) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
