package mcq

// Strategy names an extraction strategy.
type Strategy string

const (
	StrategyPrimary  Strategy = "primary"
	StrategyFallback Strategy = "fallback"
)

// Func is the capability both strategies implement.
type Func func(text string, meta Meta) Outcome

// Outcome is the result of running one strategy.
type Outcome struct {
	Strategy Strategy `json:"strategy"`
	Records  []Record `json:"records"`
	Report   Report   `json:"report"`
}

// Attempt summarises one strategy run inside Extract.
type Attempt struct {
	Strategy Strategy `json:"strategy"`
	Records  int      `json:"records"`
	Report   Report   `json:"report"`
}

// Result is what Extract returns. Strategy, Records and Report belong to the
// last strategy run; Attempts lists every run in order.
type Result struct {
	Strategy Strategy  `json:"strategy"`
	Records  []Record  `json:"records"`
	Report   Report    `json:"report"`
	Attempts []Attempt `json:"attempts"`
}

var strategies = []struct {
	name Strategy
	run  Func
}{
	{StrategyPrimary, Primary},
	{StrategyFallback, Fallback},
}

// Lookup returns the strategy registered under name.
func Lookup(name Strategy) (Func, bool) {
	for _, s := range strategies {
		if s.name == name {
			return s.run, true
		}
	}
	return nil, false
}

// Extract runs Primary over text and, only when it yields no record, runs
// Fallback. An empty result from both is not an error.
func Extract(text string, meta Meta) Result {
	var res Result
	for _, s := range strategies {
		res = res.with(s.run(text, meta))
		if len(res.Records) > 0 {
			break
		}
	}
	return res
}

// Run runs a single strategy and wraps its outcome as a Result.
func Run(fn Func, text string, meta Meta) Result {
	return Result{}.with(fn(text, meta))
}

func (r Result) with(out Outcome) Result {
	r.Strategy = out.Strategy
	r.Records = out.Records
	r.Report = out.Report
	r.Attempts = append(r.Attempts, Attempt{
		Strategy: out.Strategy,
		Records:  len(out.Records),
		Report:   out.Report,
	})
	return r
}
