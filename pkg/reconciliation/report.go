package reconciliation

// Outcome is the result of executing one action. Err is nil on success.
type Outcome struct {
	Action Action
	Err    error
}

// Report counts planned and executed actions. WARN_ORPHAN actions are counted
// as orphans, never as executed or failed.
type Report struct {
	Planned  int
	Executed int
	Failed   int
	Orphans  int
	Outcomes []Outcome
}

func (r Report) merge(other Report) Report {
	return Report{
		Planned:  r.Planned + other.Planned,
		Executed: r.Executed + other.Executed,
		Failed:   r.Failed + other.Failed,
		Orphans:  r.Orphans + other.Orphans,
		Outcomes: append(append([]Outcome{}, r.Outcomes...), other.Outcomes...),
	}
}

// Result is what a reconciliation run returns: the analyzed actions and,
// unless it was a dry run, the execution report.
type Result struct {
	Actions []Action
	Report  Report
	DryRun  bool
}

func (r Result) merge(other Result) Result {
	return Result{
		Actions: append(append([]Action{}, r.Actions...), other.Actions...),
		Report:  r.Report.merge(other.Report),
		DryRun:  r.DryRun,
	}
}
