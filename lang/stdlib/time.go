package stdlib

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ardnew/dopa/lang"
)

// date returns the current time, or the local time given by 3, 6 or 7
// numeric components: year, month, day, hour, minute, second, millisecond.
func (l *library) date(_ context.Context, c lang.Call) (lang.Value, error) {
	switch len(c.Args) {
	case 0:
		return lang.NewDateTime(l.now()), nil
	case 3, 6, 7:
	default:
		return lang.Value{}, lang.Errorf("date expects 0, 3, 6 or 7 arguments, got %d", len(c.Args))
	}

	var parts [7]int

	for i := range c.Args {
		n, err := intArg(c, i)
		if err != nil {
			return lang.Value{}, err
		}

		parts[i] = n
	}

	if parts[1] < 1 || parts[1] > 12 {
		return lang.Value{}, lang.Errorf("date: month %d out of range", parts[1])
	}

	t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5],
		parts[6]*int(time.Millisecond), time.Local)

	// time.Date normalizes overflow; reject it instead.
	if t.Day() != parts[2] || t.Hour() != parts[3] || t.Minute() != parts[4] || t.Second() != parts[5] {
		return lang.Value{}, lang.Errorf("date: invalid date %v", parts[:len(c.Args)])
	}

	return lang.NewDateTime(t), nil
}

func (l *library) timespanTotalMilliseconds(_ context.Context, c lang.Call) (lang.Value, error) {
	v, err := arg(c, 0, lang.TypeTimeSpan)
	if err != nil {
		return lang.Value{}, err
	}

	ms := decimal.NewFromInt(int64(v.TimeSpan())).Div(decimal.NewFromInt(int64(time.Millisecond)))

	return lang.NewNumeric(ms), nil
}

// sleep blocks for the given number of milliseconds, or until ctx is done.
// Negative durations do not block.
func (l *library) sleep(ctx context.Context, c lang.Call) (lang.Value, error) {
	ms, err := intArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	timer := time.NewTimer(time.Duration(max(ms, 0)) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		return lang.Value{}, nil
	case <-ctx.Done():
		return lang.Value{}, context.Cause(ctx)
	}
}

// random returns a uniform integer in [0, n).
func (l *library) random(_ context.Context, c lang.Call) (lang.Value, error) {
	n, err := intArg(c, 0)
	if err != nil {
		return lang.Value{}, err
	}

	if n <= 0 {
		return lang.Value{}, lang.Errorf("random: bound %d must be positive", n)
	}

	return lang.NewInt(int64(l.rand.IntN(n))), nil
}
