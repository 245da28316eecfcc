package mcq

import (
	"encoding/json"
	"testing"
)

func TestExtract_PrimaryWins(t *testing.T) {
	res := Extract("Q1. What is 2+2? A) 3 B) 4 C) 5 D) 6 Answer: B", testMeta)
	if res.Strategy != StrategyPrimary {
		t.Fatalf("strategy: %s", res.Strategy)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("fallback must not run after a productive primary: %+v", res.Attempts)
	}
	if len(res.Records) != 1 || res.Records[0].CorrectAnswer != 2 {
		t.Fatalf("records: %+v", res.Records)
	}
}

func TestExtract_NoMarkersRunsBoth(t *testing.T) {
	res := Extract("1. Capital?\nA) Paris\nB) Rome\nC) Oslo\nD) Bern\nAnswer: A", testMeta)
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts: got %d, want 2", len(res.Attempts))
	}
	if res.Attempts[0].Strategy != StrategyPrimary || res.Attempts[0].Records != 0 {
		t.Fatalf("first attempt: %+v", res.Attempts[0])
	}
	if res.Strategy != StrategyFallback || len(res.Records) != 0 {
		t.Fatalf("result: %+v", res)
	}
}

func TestExtract_BothEmptyIsNotAnError(t *testing.T) {
	res := Extract("This document has no questions.", testMeta)
	if res.Records == nil || len(res.Records) != 0 {
		t.Fatalf("records: %#v", res.Records)
	}
	if res.Strategy != StrategyFallback || len(res.Attempts) != 2 {
		t.Fatalf("result: %+v", res)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Records []Record `json:"records"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Records == nil {
		t.Fatal("records must encode as [] not null")
	}
}

func TestExtract_FallbackRecoversMislabelledOptions(t *testing.T) {
	// A repeated label makes every block ambiguous for the primary parser;
	// the line parser maps options by arrival order and recovers them.
	text := "Q1. First?\nA) a\nB) b\nB) c\nD) d\nAnswer: A\nQ2. Second?\nA) w\nA) x\nC) y\nD) z\nAnswer: D"

	primary := Primary(text, testMeta)
	if len(primary.Records) != 0 || primary.Report.Count(IncompleteOptions) != 2 {
		t.Fatalf("primary: %+v", primary)
	}

	res := Extract(text, testMeta)
	if res.Strategy != StrategyFallback {
		t.Fatalf("strategy: %s", res.Strategy)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records: %+v", res.Records)
	}
	if res.Records[0].Options != [4]string{"a", "b", "c", "d"} {
		t.Fatalf("options: %q", res.Records[0].Options)
	}
	if res.Report.Total() != 0 {
		t.Fatalf("returned report belongs to fallback: %+v", res.Report)
	}
	if res.Attempts[0].Report.Count(IncompleteOptions) != 2 {
		t.Fatal("primary attempt report lost")
	}
}

func TestLookupAndRun(t *testing.T) {
	fn, ok := Lookup(StrategyFallback)
	if !ok {
		t.Fatal("fallback not registered")
	}
	res := Run(fn, "Q1. q\nA) a\nB) b\nC) c\nD) d\nAnswer: D", testMeta)
	if res.Strategy != StrategyFallback || len(res.Records) != 1 || len(res.Attempts) != 1 {
		t.Fatalf("result: %+v", res)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatal("unknown strategy must not resolve")
	}
}
