package services

import (
	"context"
	"daystack/internal/adapters/travel"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gapBetween(start, deadline int, from, to string) domain.Gap {
	return domain.Gap{
		Start:        *clock(start, 0),
		Deadline:     *clock(deadline, 0),
		FromLocation: from,
		ToLocation:   to,
	}
}

func unbuffered() PackerOptions {
	opts := DefaultPackerOptions()
	opts.IncludeBuffer = false
	return opts
}

func pack(t *testing.T, oracle ports.TravelTimeOracle, opts PackerOptions, gap domain.Gap, tasks []domain.FlexibleTask) GapResult {
	t.Helper()
	res, err := NewGapPacker(NewTravelCache(oracle), opts).PackGap(context.Background(), gap, tasks)
	require.NoError(t, err)
	return res
}

func TestPackGap_SingleTaskFits(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}})

	res := pack(t, oracle, unbuffered(), gapBetween(12, 16, "X", "Y"), []domain.FlexibleTask{task("t", 40, "X")})

	require.Len(t, res.Blocks, 1)
	b := res.Blocks[0]
	assert.Equal(t, *clock(12, 0), b.Start)
	assert.Equal(t, *clock(12, 40), b.End)
	assert.Equal(t, "X", b.Location)
	assert.Equal(t, 0, b.TravelBefore)
	assert.Equal(t, 60, b.TravelAfter)
	assert.Empty(t, res.Remaining)
	assert.False(t, res.Blocked)
	assert.Equal(t, 240-100, res.SlackAfter)
}

func TestPackGap_GreedyAcrossIterations(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}})
	tasks := []domain.FlexibleTask{task("big", 200, "X"), task("small", 100, "X")}

	res := pack(t, oracle, unbuffered(), gapBetween(12, 16, "X", "Y"), tasks)

	assert.Equal(t, []string{"small"}, blockIDs(res.Blocks))
	assert.Equal(t, []string{"big"}, taskIDs(res.Remaining))
	assert.True(t, res.Blocked)
	assert.Equal(t, []string{"big", "small"}, taskIDs(tasks), "caller's slice must be untouched")
}

func TestPackGap_TightestFitFirst(t *testing.T) {
	oracle := travel.NewStaticOracle(nil)
	tasks := []domain.FlexibleTask{task("30", 30, ""), task("90", 90, ""), task("60", 60, "")}

	res := pack(t, oracle, unbuffered(), domain.Gap{
		Start:        *clock(10, 0),
		Deadline:     *clock(11, 40),
		FromLocation: "X",
		ToLocation:   "X",
	}, tasks)

	assert.Equal(t, []string{"90"}, blockIDs(res.Blocks))
	assert.Equal(t, []string{"30", "60"}, taskIDs(res.Remaining))
	assert.True(t, res.Blocked)
	assert.Equal(t, 10, res.SlackAfter)
}

func TestPackGap_TravelPenaltyBreaksSlackTies(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 60},
		{From: "X", To: "Z", Minutes: 10},
		{From: "Z", To: "Y", Minutes: 40},
	})
	tasks := []domain.FlexibleTask{task("near-home", 50, "X"), task("detour", 60, "Z")}

	// Both cost 110 in a 120 minute gap; the detour travels 50 instead of 60.
	res := pack(t, oracle, unbuffered(), domain.Gap{
		Start:        *clock(10, 0),
		Deadline:     *clock(12, 0),
		FromLocation: "X",
		ToLocation:   "Y",
	}, tasks)

	require.Equal(t, []string{"detour"}, blockIDs(res.Blocks))
	assert.Equal(t, *clock(10, 10), res.Blocks[0].Start)
	assert.Equal(t, 10, res.Blocks[0].TravelBefore)
	assert.Equal(t, 40, res.Blocks[0].TravelAfter)
}

func TestPackGap_FullTieKeepsInputOrder(t *testing.T) {
	oracle := travel.NewStaticOracle(nil)
	tasks := []domain.FlexibleTask{task("a", 30, "X"), task("b", 30, "X")}

	res := pack(t, oracle, unbuffered(), gapBetween(10, 11, "X", "X"), tasks)

	assert.Equal(t, []string{"a", "b"}, blockIDs(res.Blocks))
	assert.Equal(t, *clock(10, 30), res.Blocks[1].Start)
	assert.Equal(t, 0, res.SlackAfter)
	assert.False(t, res.Blocked)
}

func TestPackGap_CursorAdvancesLocation(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "A", Minutes: 10},
		{From: "A", To: "B", Minutes: 5},
		{From: "X", To: "B", Minutes: 30},
		{From: "A", To: "Y", Minutes: 20},
		{From: "B", To: "Y", Minutes: 20},
	}).Symmetric()
	tasks := []domain.FlexibleTask{task("at-a", 60, "A"), task("at-b", 60, "B")}

	res := pack(t, oracle, unbuffered(), gapBetween(10, 14, "X", "Y"), tasks)

	require.Len(t, res.Blocks, 2)
	// at-b is tighter from X (30+60+20 = 110 vs 90), then at-a from B needs B -> A.
	assert.Equal(t, "at-b", res.Blocks[0].TaskID)
	assert.Equal(t, *clock(10, 30), res.Blocks[0].Start)
	assert.Equal(t, "at-a", res.Blocks[1].TaskID)
	assert.Equal(t, 5, res.Blocks[1].TravelBefore, "B -> A resolved through the reverse pair")
}

func TestPackGap_OracleFailureMakesTaskIneligible(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 30},
	})
	tasks := []domain.FlexibleTask{task("unknown-place", 10, "Atlantis"), task("ok", 60, "X")}

	res := pack(t, oracle, unbuffered(), gapBetween(10, 14, "X", "Y"), tasks)

	assert.Equal(t, []string{"ok"}, blockIDs(res.Blocks))
	assert.Equal(t, []string{"unknown-place"}, taskIDs(res.Remaining))
	assert.True(t, res.Blocked)
}

func TestPackGap_FailedLookupNotRetriedWithinGap(t *testing.T) {
	oracle := newCountingOracle(travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 30},
	}))
	tasks := []domain.FlexibleTask{
		task("island", 10, "Atlantis"),
		task("f1", 10, "X"),
		task("f2", 10, "X"),
		task("f3", 10, "X"),
		task("f4", 10, "X"),
	}

	res := pack(t, oracle, unbuffered(), gapBetween(10, 14, "X", "Y"), tasks)

	assert.Equal(t, []string{"f1", "f2", "f3", "f4"}, blockIDs(res.Blocks))
	assert.Equal(t, []string{"island"}, taskIDs(res.Remaining))
	calls := oracle.snapshot()
	assert.Equal(t, 1, calls[ports.TravelQuery{From: "X", To: "Atlantis"}])
	assert.Equal(t, 1, calls[ports.TravelQuery{From: "Atlantis", To: "Y"}])
}

func TestPackGap_TransientFailureRetriedInNextGap(t *testing.T) {
	static := travel.NewStaticOracle([]travel.StaticPair{
		{From: "X", To: "Y", Minutes: 30},
		{From: "X", To: "L", Minutes: 20},
		{From: "L", To: "Y", Minutes: 20},
	}).Symmetric()
	failedOnce := false
	oracle := newCountingOracle(oracleFunc(func(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
		if from == "X" && to == "L" && !failedOnce {
			failedOnce = true
			return 0, fmt.Errorf("route service timeout: %w", ports.ErrOracleUnavailable)
		}
		return static.TravelMinutes(ctx, from, to, includeBuffer)
	}))
	packer := NewGapPacker(NewTravelCache(oracle), unbuffered())

	first, err := packer.PackGap(context.Background(), gapBetween(10, 14, "X", "Y"),
		[]domain.FlexibleTask{task("b", 30, "L"), task("a", 30, "X")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, blockIDs(first.Blocks))
	assert.Equal(t, []string{"b"}, taskIDs(first.Remaining))
	assert.True(t, first.Blocked)
	assert.Equal(t, 1, oracle.snapshot()[ports.TravelQuery{From: "X", To: "L"}])

	second, err := packer.PackGap(context.Background(), gapBetween(15, 18, "X", "Y"), first.Remaining)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, blockIDs(second.Blocks))
	assert.Equal(t, *clock(15, 20), second.Blocks[0].Start)
	assert.Empty(t, second.Remaining)
	assert.Equal(t, 2, oracle.snapshot()[ports.TravelQuery{From: "X", To: "L"}])
}

func TestPackGap_PropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 30}})
	res, err := NewGapPacker(NewTravelCache(oracle), unbuffered()).
		PackGap(ctx, gapBetween(10, 14, "X", "Y"), []domain.FlexibleTask{task("t", 10, "X")})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Blocks)
	assert.Equal(t, []string{"t"}, taskIDs(res.Remaining))
}

func TestPackGap_RespectsTaskDeadline(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}})

	due := task("due", 40, "X")
	due.Deadline = clock(12, 30)
	relaxed := task("relaxed", 20, "X")
	relaxed.Deadline = clock(12, 30)

	opts := unbuffered()
	opts.RespectDeadlines = true
	res := pack(t, oracle, opts, gapBetween(12, 16, "X", "Y"), []domain.FlexibleTask{due, relaxed})

	assert.Equal(t, []string{"relaxed"}, blockIDs(res.Blocks))
	assert.Equal(t, []string{"due"}, taskIDs(res.Remaining))
}

func TestPackGap_IgnoresTaskDeadlineByDefault(t *testing.T) {
	oracle := travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}})

	late := task("late", 40, "X")
	late.Deadline = clock(8, 0)

	res := pack(t, oracle, unbuffered(), gapBetween(12, 16, "X", "Y"), []domain.FlexibleTask{late})

	assert.Equal(t, []string{"late"}, blockIDs(res.Blocks))
	assert.Empty(t, res.Remaining)
}

func TestPackGap_UnlocatedTaskPolicies(t *testing.T) {
	newOracle := func() *travel.StaticOracle {
		return travel.NewStaticOracle([]travel.StaticPair{{From: "X", To: "Y", Minutes: 60}}).WithBuffer(15)
	}
	tasks := []domain.FlexibleTask{task("reading", 30, "")}
	gap := gapBetween(12, 16, "X", "Y")

	cursorOracle := newOracle()
	cursor := pack(t, cursorOracle, DefaultPackerOptions(), gap, tasks)
	require.Len(t, cursor.Blocks, 1)
	assert.Equal(t, "X", cursor.Blocks[0].Location)
	assert.Equal(t, 0, cursor.Blocks[0].TravelBefore)
	assert.Equal(t, 75, cursor.Blocks[0].TravelAfter)
	assert.Equal(t, 1, cursorOracle.Calls(ports.TravelQuery{From: "X", To: "X", IncludeBuffer: true}))

	agnosticOracle := newOracle()
	opts := DefaultPackerOptions()
	opts.Policy = LocationAgnostic
	agnostic := pack(t, agnosticOracle, opts, gap, tasks)
	require.Len(t, agnostic.Blocks, 1)
	assert.Equal(t, 0, agnostic.Blocks[0].TravelBefore)
	assert.Equal(t, 75, agnostic.Blocks[0].TravelAfter)
	assert.Equal(t, *clock(12, 0), agnostic.Blocks[0].Start)
	assert.Equal(t, 0, agnosticOracle.Calls(ports.TravelQuery{From: "X", To: "X", IncludeBuffer: true}))
}

func TestPackGap_ParallelLookupsMatchSequential(t *testing.T) {
	pairs := []travel.StaticPair{
		{From: "X", To: "Y", Minutes: 25},
		{From: "X", To: "A", Minutes: 7},
		{From: "X", To: "B", Minutes: 12},
		{From: "A", To: "B", Minutes: 9},
		{From: "A", To: "Y", Minutes: 18},
		{From: "B", To: "Y", Minutes: 4},
	}
	tasks := []domain.FlexibleTask{
		task("1", 35, "A"), task("2", 20, "B"), task("3", 50, ""), task("4", 15, "A"), task("5", 45, "Nowhere"),
	}
	gap := gapBetween(9, 12, "X", "Y")

	seq := pack(t, travel.NewStaticOracle(pairs).Symmetric(), unbuffered(), gap, tasks)

	opts := unbuffered()
	opts.Parallelism = 4
	par := pack(t, travel.NewStaticOracle(pairs).Symmetric(), opts, gap, tasks)

	assert.Equal(t, seq, par)
}

func TestPackGap_EmptyInputs(t *testing.T) {
	oracle := oracleFunc(func(context.Context, string, string, bool) (int, error) {
		return 0, errors.New("must not be called")
	})

	res := pack(t, oracle, unbuffered(), gapBetween(10, 12, "X", "Y"), nil)
	assert.Empty(t, res.Blocks)
	assert.Empty(t, res.Remaining)
	assert.False(t, res.Blocked)
	assert.Equal(t, 120, res.SlackAfter)

	res = pack(t, oracle, unbuffered(), gapBetween(12, 12, "X", "Y"), []domain.FlexibleTask{task("t", 5, "X")})
	assert.Empty(t, res.Blocks)
	assert.Equal(t, []string{"t"}, taskIDs(res.Remaining))
	assert.False(t, res.Blocked)
}
