// daystack plans one day: it reads the fixed calendar and the task backlog,
// asks the travel oracle how long each move takes, and prints a schedule
// with the tasks packed into the free time between events.
//
//	daystack --events week.ics --tasks backlog.yaml --date 2026-03-04
//	daystack --route --start-location 집 --tasks errands.yaml
package main

import (
	"context"
	"daystack/internal/adapters/repositories"
	"daystack/internal/config"
	"daystack/internal/domain"
	"daystack/internal/platform/bootstrap"
	"daystack/internal/ports"
	"daystack/internal/services"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type options struct {
	date          string
	events        string
	tasks         string
	locations     string
	timezone      string
	dayStart      string
	dayEnd        string
	startLocation string
	endLocation   string
	policy        string
	noBuffer      bool
	noStore       bool
	deadlines     bool
	route         bool
	verbose       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var opts options
	flagSet := pflag.NewFlagSet("daystack", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.StringVar(&opts.date, "date", "", "day to plan as YYYY-MM-DD (default: today)")
	flagSet.StringVarP(&opts.events, "events", "e", cfg.CalendarPath, "calendar: .ics file or URL, or a YAML/JSON events file")
	flagSet.StringVarP(&opts.tasks, "tasks", "t", "", "YAML/JSON task backlog (default: tasks stored in the database)")
	flagSet.StringVar(&opts.locations, "locations", cfg.LocationsFile, "YAML file of location aliases and pinned coordinates")
	flagSet.StringVar(&opts.timezone, "timezone", cfg.Timezone, "IANA time zone for dates and clock times")
	flagSet.StringVar(&opts.dayStart, "day-start", "", "start of the day as HH:MM (adds a leading gap)")
	flagSet.StringVar(&opts.dayEnd, "day-end", "", "end of the day as HH:MM (adds a trailing gap)")
	flagSet.StringVar(&opts.startLocation, "start-location", "", "where the day starts")
	flagSet.StringVar(&opts.endLocation, "end-location", "", "where the day ends")
	flagSet.StringVar(&opts.policy, "policy", cfg.UnlocatedPolicy, "tasks without a location: cursor or agnostic")
	flagSet.BoolVar(&opts.noBuffer, "no-buffer", false, "ask the oracle for travel times without the safety buffer")
	flagSet.BoolVar(&opts.deadlines, "respect-deadlines", false, "do not place a task past its own deadline")
	flagSet.BoolVar(&opts.noStore, "no-store", false, "do not open the database (no persistent travel cache)")
	flagSet.BoolVar(&opts.route, "route", false, "order the tasks into the shortest tour from --start-location instead of planning a day")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log oracle and packing decisions to stderr")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}

	cfg.LocationsFile = opts.locations
	cfg.Timezone = opts.timezone
	cfg.UnlocatedPolicy = strings.ToLower(strings.TrimSpace(opts.policy))
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc := cfg.Location()

	var (
		conn    *sql.DB
		dialect repositories.Dialect
	)
	if !opts.noStore {
		conn, dialect, err = bootstrap.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
	}

	oracle, err := bootstrap.NewOracle(ctx, cfg, conn, dialect)
	if err != nil {
		return err
	}
	defer oracle.Close()

	packer := bootstrap.PackerOptions(cfg)
	packer.IncludeBuffer = !opts.noBuffer
	packer.RespectDeadlines = opts.deadlines

	var taskRepo ports.TaskRepository
	switch {
	case opts.tasks != "":
		taskRepo = repositories.NewFileTaskRepository(opts.tasks)
	case conn != nil:
		taskRepo = repositories.NewSQLTaskRepository(conn, dialect)
	default:
		return errors.New("--tasks is required with --no-store")
	}
	tasks, err := taskRepo.ListTasks(ctx)
	if err != nil {
		return err
	}

	if opts.route {
		return runRoute(ctx, stdout, oracle, opts.startLocation, tasks, packer)
	}

	day, err := parseDay(opts.date, loc)
	if err != nil {
		return err
	}

	source := bootstrap.NewEventSource(opts.events, loc)
	if source == nil {
		return errors.New("--events (or CALENDAR_PATH) is required")
	}
	events, err := source.EventsOn(ctx, day)
	if err != nil {
		return err
	}

	bounds := services.DayBounds{
		StartLocation: strings.TrimSpace(opts.startLocation),
		EndLocation:   strings.TrimSpace(opts.endLocation),
	}
	if bounds.Start, err = parseClock(day, opts.dayStart); err != nil {
		return fmt.Errorf("--day-start: %w", err)
	}
	if bounds.End, err = parseClock(day, opts.dayEnd); err != nil {
		return fmt.Errorf("--day-end: %w", err)
	}

	plan, err := services.PlanDay(ctx, services.PlanDayRequest{
		Events: events,
		Tasks:  tasks,
		Bounds: bounds,
		Packer: packer,
	}, oracle)
	if err != nil {
		return err
	}

	printPlan(stdout, day, plan, loc)
	return nil
}

func runRoute(
	ctx context.Context,
	stdout io.Writer,
	oracle ports.TravelTimeOracle,
	start string,
	tasks []domain.FlexibleTask,
	packer services.PackerOptions,
) error {
	if strings.TrimSpace(start) == "" {
		return errors.New("--start-location is required with --route")
	}

	inst, err := services.BuildRouteInstance(ctx, oracle, start, tasks, packer)
	if err != nil {
		return err
	}

	nodes, travel, work, total, err := services.NewRouteSolver(inst).ComputeOptimalSchedule()
	if err != nil {
		return err
	}

	printRoute(stdout, nodes, travel, work, total)
	return nil
}

// parseDay returns midnight of the requested day, or of today when empty.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return day, nil
}

// parseClock places an HH:MM clock time on day. Empty input yields nil.
func parseClock(day time.Time, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	clock, err := time.Parse("15:04", s)
	if err != nil {
		return nil, fmt.Errorf("want HH:MM, got %q", s)
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
	return &t, nil
}
