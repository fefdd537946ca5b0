package services

import (
	"context"
	"daystack/internal/adapters/travel"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planDay(t *testing.T, oracle ports.TravelTimeOracle, req PlanDayRequest) *domain.DayPlan {
	t.Helper()
	plan, err := PlanDay(context.Background(), req, oracle)
	require.NoError(t, err)
	return plan
}

func TestPlanDay_PlacesTaskAfterMorningEvent(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}})

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("morning", clock(9, 0), clock(12, 0), "X"),
			event("evening", clock(16, 0), clock(20, 0), "Y"),
		},
		Tasks:  []domain.FlexibleTask{task("t", 40, "X")},
		Packer: unbuffered(),
	})

	require.Len(t, plan.Entries, 3)
	assert.Equal(t, domain.EntryEvent, plan.Entries[0].Kind)
	assert.Equal(t, domain.EntryTask, plan.Entries[1].Kind)
	assert.Equal(t, *clock(12, 0), plan.Entries[1].Block.Start)
	assert.Equal(t, *clock(12, 40), plan.Entries[1].Block.End)
	assert.Equal(t, "evening", plan.Entries[2].Event.ID)
	assert.Empty(t, plan.Unplaced)

	require.Len(t, plan.Gaps, 1)
	require.NotNil(t, plan.Gaps[0].DirectTravel)
	assert.Equal(t, 60, *plan.Gaps[0].DirectTravel)
	assert.Equal(t, 140, plan.Gaps[0].SlackAfter)
}

func TestPlanDay_LeavesOversizedTaskUnplaced(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}})

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("morning", clock(9, 0), clock(12, 0), "X"),
			event("evening", clock(16, 0), clock(20, 0), "Y"),
		},
		Tasks:  []domain.FlexibleTask{task("200", 200, "X"), task("100", 100, "X")},
		Packer: unbuffered(),
	})

	assert.Equal(t, []string{"100"}, blockIDs(plan.Placed()))
	assert.Equal(t, []string{"200"}, taskIDs(plan.Unplaced))
	assert.True(t, plan.Gaps[0].Blocked)
}

func TestPlanDay_OverlappingEventsPlaceNothing(t *testing.T) {
	oracle := travel.NewStaticOracle(nil)
	tasks := make([]domain.FlexibleTask, 0, 20)
	for i := range 20 {
		tasks = append(tasks, task(fmt.Sprintf("t%d", i), 5, ""))
	}

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(9, 0), clock(12, 0), "X"),
			event("b", clock(11, 0), clock(13, 0), "X"),
		},
		Tasks:  tasks,
		Packer: unbuffered(),
	})

	assert.Empty(t, plan.Placed())
	assert.Len(t, plan.Unplaced, 20)
	require.Len(t, plan.Gaps, 1)
	assert.Nil(t, plan.Gaps[0].DirectTravel, "degenerate gaps are not analysed")
	assert.Zero(t, oracle.TotalCalls())
}

func TestPlanDay_TasksCarryAcrossGaps(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 10},
		{From: "Y", To: "Z", Minutes: 10},
	})

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(9, 0), clock(10, 0), "X"),
			event("b", clock(11, 0), clock(12, 0), "Y"),
			event("c", clock(15, 0), clock(16, 0), "Z"),
		},
		Tasks:  []domain.FlexibleTask{task("long", 120, ""), task("short", 30, "")},
		Packer: unbuffered(),
	})

	require.Len(t, plan.Gaps, 2)
	assert.Equal(t, []string{"short"}, blockIDs(plan.Gaps[0].Blocks))
	assert.Equal(t, []string{"long"}, blockIDs(plan.Gaps[1].Blocks))
	assert.Empty(t, plan.Unplaced)

	var order []string
	for _, e := range plan.Entries {
		if e.Event != nil {
			order = append(order, e.Event.ID)
		} else {
			order = append(order, e.Block.TaskID)
		}
	}
	assert.Equal(t, []string{"a", "short", "b", "long", "c"}, order)
}

func TestPlanDay_OpenEndedMarkers(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{
		{From: "office", To: "school", Minutes: 30},
		{From: "school", To: "home", Minutes: 20},
	}).Symmetric()

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("lecture", clock(15, 0), clock(17, 0), "school"),
			event("leave-office", nil, clock(13, 0), "office"),
			event("dinner", clock(19, 0), nil, "home"),
		},
		Tasks:  []domain.FlexibleTask{task("report", 60, "office"), task("laundry", 40, "home")},
		Packer: unbuffered(),
	})

	require.Len(t, plan.Entries, 5)
	assert.Equal(t, "leave-office", plan.Entries[0].Event.ID)
	assert.Equal(t, "report", plan.Entries[1].Block.TaskID)
	assert.Equal(t, *clock(13, 0), plan.Entries[1].Block.Start)
	assert.Equal(t, "lecture", plan.Entries[2].Event.ID)
	assert.Equal(t, "laundry", plan.Entries[3].Block.TaskID)
	assert.Equal(t, *clock(17, 20), plan.Entries[3].Block.Start)
	assert.Equal(t, "dinner", plan.Entries[4].Event.ID)
}

func TestPlanDay_DayBounds(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{
		{From: "home", To: "school", Minutes: 30},
	}).Symmetric()

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{event("class", clock(10, 0), clock(12, 0), "school")},
		Tasks:  []domain.FlexibleTask{task("gym", 60, "home"), task("email", 45, "")},
		Bounds: DayBounds{
			Start:         clock(8, 0),
			StartLocation: "home",
			End:           clock(14, 0),
			EndLocation:   "home",
		},
		Packer: unbuffered(),
	})

	require.Len(t, plan.Gaps, 2)
	assert.Equal(t, -1, plan.Gaps[0].Gap.PrevIndex)
	require.Len(t, plan.Entries, 3)
	assert.Equal(t, "gym", plan.Entries[0].Block.TaskID, "leading gap blocks precede the first event")
	assert.Equal(t, "class", plan.Entries[1].Event.ID)
	assert.Equal(t, "email", plan.Entries[2].Block.TaskID)
}

func TestPlanDay_Errors(t *testing.T) {
	oracle := travel.NewStaticOracle(nil)
	ctx := context.Background()

	_, err := PlanDay(ctx, PlanDayRequest{Tasks: []domain.FlexibleTask{task("t", 5, "")}}, oracle)
	assert.ErrorIs(t, err, ErrEmptyCalendar)

	ok := []domain.FixedEvent{event("a", clock(9, 0), clock(10, 0), "X")}

	_, err = PlanDay(ctx, PlanDayRequest{Events: ok}, nil)
	assert.Error(t, err)

	_, err = PlanDay(ctx, PlanDayRequest{Events: []domain.FixedEvent{event("bad", clock(10, 0), clock(9, 0), "X")}}, oracle)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = PlanDay(ctx, PlanDayRequest{Events: []domain.FixedEvent{event("floating", nil, nil, "X")}}, oracle)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	for name, tasks := range map[string][]domain.FlexibleTask{
		"empty id":      {task(" ", 5, "")},
		"duplicate id":  {task("a", 5, ""), task("a", 10, "")},
		"zero duration": {task("a", 0, "")},
	} {
		_, err = PlanDay(ctx, PlanDayRequest{Events: ok, Tasks: tasks}, oracle)
		assert.ErrorIs(t, err, ErrInvalidTask, name)
	}
}

func TestPlanDay_CancelledBeforeFirstGap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := newCountingOracle(travel.NewStaticOracle(nil))
	_, err := PlanDay(ctx, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(9, 0), clock(10, 0), "X"),
			event("b", clock(11, 0), clock(12, 0), "X"),
		},
		Tasks: []domain.FlexibleTask{task("t", 5, "")},
	}, oracle)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, oracle.snapshot())
}

func TestPlanDay_CancelledBetweenGaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	static := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 5}}).Symmetric()
	oracle := oracleFunc(func(ctx context.Context, from, to string, buf bool) (int, error) {
		v, err := static.TravelMinutes(ctx, from, to, buf)
		if to == "Y" {
			// The first gap ends at Y; stop the run once it has been looked at.
			cancel()
		}
		return v, err
	})

	_, err := PlanDay(ctx, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(9, 0), clock(10, 0), "X"),
			event("b", clock(11, 0), clock(12, 0), "Y"),
			event("c", clock(13, 0), clock(14, 0), "X"),
		},
		Tasks: []domain.FlexibleTask{task("t", 5, "")},
	}, oracle)

	require.ErrorIs(t, err, context.Canceled)
}

func TestPlanDay_DirectTravelUnknown(t *testing.T) {
	oracle := travel.NewStaticOracle(nil)

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(9, 0), clock(10, 0), "X"),
			event("b", clock(12, 0), clock(13, 0), "Mars"),
		},
		Tasks:  []domain.FlexibleTask{task("t", 30, "X")},
		Packer: unbuffered(),
	})

	require.Len(t, plan.Gaps, 1)
	assert.Nil(t, plan.Gaps[0].DirectTravel)
	assert.Equal(t, []string{"t"}, taskIDs(plan.Unplaced))
}

func TestPlanDay_OracleFailureRecoversInLaterGap(t *testing.T) {
	failures := 0
	static := travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 10},
		{From: "Y", To: "X", Minutes: 10},
	})
	oracle := oracleFunc(func(ctx context.Context, from, to string, buf bool) (int, error) {
		if from == "X" && to == "Y" && failures < 2 {
			failures++
			return 0, errors.New("timeout")
		}
		return static.TravelMinutes(ctx, from, to, buf)
	})

	plan := planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(9, 0), clock(10, 0), "X"),
			event("b", clock(12, 0), clock(13, 0), "Y"),
			event("c", clock(15, 0), clock(16, 0), "X"),
			event("d", clock(18, 0), clock(19, 0), "Y"),
		},
		Tasks:  []domain.FlexibleTask{task("t", 60, "X")},
		Packer: unbuffered(),
	})

	require.Len(t, plan.Gaps, 3)
	assert.Nil(t, plan.Gaps[0].DirectTravel)
	assert.Empty(t, plan.Gaps[0].Blocks)
	assert.Equal(t, []string{"t"}, blockIDs(plan.Gaps[1].Blocks), "Y -> X works")
	assert.Empty(t, plan.Unplaced)
}

func TestPlanDay_MemoizesAcrossGaps(t *testing.T) {
	oracle := newCountingOracle(travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 15},
		{From: "X", To: "L", Minutes: 5},
		{From: "L", To: "Y", Minutes: 5},
	}).Symmetric())

	planDay(t, oracle, PlanDayRequest{
		Events: []domain.FixedEvent{
			event("a", clock(8, 0), clock(9, 0), "X"),
			event("b", clock(10, 0), clock(11, 0), "Y"),
			event("c", clock(11, 30), clock(12, 0), "X"),
			event("d", clock(13, 0), clock(14, 0), "Y"),
		},
		Tasks: []domain.FlexibleTask{
			task("1", 200, "L"), task("2", 300, "L"), task("3", 400, ""),
		},
		Packer: DefaultPackerOptions(),
	})

	calls := oracle.snapshot()
	require.NotEmpty(t, calls)
	for q, n := range calls {
		assert.Equal(t, 1, n, "query %+v", q)
	}
}

// randomDay builds a reproducible calendar, backlog and travel table.
func randomDay(seed uint64) ([]domain.FixedEvent, []domain.FlexibleTask, *travel.StaticOracle) {
	r := rand.New(rand.NewPCG(seed, seed*31+7))
	places := []string{"A", "B", "C", "D"}

	var pairs []travel.StaticPair
	for _, from := range places {
		for _, to := range places {
			if from != to && r.IntN(10) > 0 {
				pairs = append(pairs, travel.StaticPair{From: from, To: to, Minutes: 5 + r.IntN(55)})
			}
		}
	}

	var events []domain.FixedEvent
	cursor := testDay.Add(7 * time.Hour)
	for i := range 3 + r.IntN(4) {
		// Occasionally overlap the previous event.
		start := cursor.Add(time.Duration(r.IntN(240)-30) * time.Minute)
		end := start.Add(time.Duration(30+r.IntN(120)) * time.Minute)
		events = append(events, event(fmt.Sprintf("e%d", i), &start, &end, places[r.IntN(len(places))]))
		cursor = end
	}
	r.Shuffle(len(events), func(i, j int) { events[i], events[j] = events[j], events[i] })

	var tasks []domain.FlexibleTask
	for i := range 4 + r.IntN(8) {
		loc := ""
		if r.IntN(3) > 0 {
			loc = places[r.IntN(len(places))]
		}
		t := task(fmt.Sprintf("t%d", i), 10+r.IntN(110), loc)
		if r.IntN(4) == 0 {
			due := cursor.Add(-time.Duration(r.IntN(300)) * time.Minute)
			t.Deadline = &due
		}
		tasks = append(tasks, t)
	}

	return events, tasks, travel.NewStaticOracle(pairs).WithBuffer(r.IntN(10))
}

func TestPlanDay_Properties(t *testing.T) {
	for seed := uint64(1); seed <= 60; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			events, tasks, oracle := randomDay(seed)
			req := PlanDayRequest{Events: events, Tasks: tasks, Packer: DefaultPackerOptions()}
			plan := planDay(t, oracle, req)

			// Every task is placed or unplaced, never both, never lost.
			placed := blockIDs(plan.Placed())
			unplaced := taskIDs(plan.Unplaced)
			all := append(slices.Clone(placed), unplaced...)
			slices.Sort(all)
			want := taskIDs(tasks)
			slices.Sort(want)
			assert.Equal(t, want, all)

			for _, g := range plan.Gaps {
				prevEnd := g.Gap.Start
				for _, b := range g.Blocks {
					assert.False(t, b.Start.Before(g.Gap.Start), "block %s starts before its gap", b.TaskID)
					assert.False(t, b.End.After(g.Gap.Deadline), "block %s overruns its gap", b.TaskID)
					assert.False(t, b.Start.Before(prevEnd), "block %s overlaps the previous block", b.TaskID)
					assert.False(t, b.End.Add(time.Duration(b.TravelAfter)*time.Minute).After(g.Gap.Deadline))
					prevEnd = b.End
				}
				if g.Gap.Degenerate() {
					assert.Empty(t, g.Blocks)
				}
			}

			// Plan entries are chronological.
			var last time.Time
			for i, e := range plan.Entries {
				start, ok := e.Start()
				require.True(t, ok)
				assert.False(t, start.Before(last), "entry %d out of order", i)
				last = start
			}

			// Same input, same output.
			again := planDay(t, oracle, req)
			assert.Equal(t, plan, again)

			parallel := req
			parallel.Packer.Parallelism = 3
			assert.Equal(t, plan, planDay(t, oracle, parallel))
		})
	}
}
