package attendance

import (
	"context"
	"runtime"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/scan"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	shiftsvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/shift"
	"golang.org/x/sync/errgroup"
)

// ReconcileInput is everything a reconciliation run needs, already loaded.
type ReconcileInput struct {
	Employees []employee.Employee
	Dates     []time.Time
	Scans     map[scan.DailyScanKey]scan.DailyScanSet
	Resolver  *shiftsvc.Resolver
}

type Reconciler struct {
	calc    *Calculator
	workers int
}

// NewReconciler returns a reconciler running up to workers employees at a
// time. A non-positive value uses one worker per CPU.
func NewReconciler(calc *Calculator, workers int) *Reconciler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Reconciler{calc: calc, workers: workers}
}

// Reconcile derives one ReconciledDay per employee and date. Employees are
// independent and processed in parallel; the result keeps input order,
// employee first, then date.
func (r *Reconciler) Reconcile(ctx context.Context, in ReconcileInput) ([]attendance.ReconciledDay, error) {
	perEmployee := make([][]attendance.ReconciledDay, len(in.Employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, emp := range in.Employees {
		g.Go(func() error {
			days := make([]attendance.ReconciledDay, 0, len(in.Dates))
			for _, date := range in.Dates {
				if err := gctx.Err(); err != nil {
					return err
				}
				key := scan.DailyScanKey{EmployeeCode: emp.EmployeeCode, ScanDate: date.Format("2006-01-02")}
				var set *scan.DailyScanSet
				if s, ok := in.Scans[key]; ok {
					set = &s
				}
				days = append(days, r.ReconcileDay(emp, date, set, in.Resolver))
			}
			perEmployee[i] = days
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, days := range perEmployee {
		total += len(days)
	}
	result := make([]attendance.ReconciledDay, 0, total)
	for _, days := range perEmployee {
		result = append(result, days...)
	}
	return result, nil
}

// ReconcileDay runs resolve, cluster and calculate for one employee-day.
// set is nil when the employee has no scans that day.
func (r *Reconciler) ReconcileDay(emp employee.Employee, date time.Time, set *scan.DailyScanSet, resolver *shiftsvc.Resolver) attendance.ReconciledDay {
	day := attendance.ReconciledDay{
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		FullName:     emp.FullName,
		Date:         date.Format("2006-01-02"),
		Weekday:      shift.DayOf(date),
		ScanTimes:    []string{},
	}
	if set != nil {
		day.ScanTimes = set.Times
		day.ScanCount = set.ScanCount
	}

	var (
		sched    *Schedule
		template *shift.DailyShiftTemplate
	)
	if resolver != nil {
		if res, ok := resolver.ResolveDay(emp.Placement(), date); ok {
			s := NewSchedule(res.Shift, res.Day)
			sched = &s
			template = &s.Day
			day.ShiftID = &res.Shift.ID
			day.ShiftName = &res.Shift.Name
			day.ShiftStart = &s.Day.StartTime
			day.ShiftEnd = &s.Day.EndTime
		}
	}

	day.Slots = ClusterPunches(day.ScanTimes, template)
	day.Metrics = r.calc.Calculate(sched, day.Slots)
	day.DerivedStatus, day.NeedsManualInput, day.NeedsReview = DeriveStatus(day.HasShift(), day.Slots, day.Metrics)

	return day
}

// DateRange lists the calendar dates from start to end inclusive.
func DateRange(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
