package paramcheck

import (
	"testing"

	"github.com/pithecene-io/flightreplay/types"
)

func TestStreamRates(t *testing.T) {
	rates := StreamRates()
	if len(rates) != 27 {
		t.Errorf("len = %d, want 27", len(rates))
	}
	if rates["SR1_EXTRA1"] != 3 || rates["SR2_PARAMS"] != 10 || rates["SR1_RAW_SENS"] != 1 {
		t.Error("unexpected target values")
	}
	// Each call returns a fresh map.
	rates["SR1_EXTRA1"] = 99
	if StreamRates()["SR1_EXTRA1"] != 3 {
		t.Error("StreamRates shares state between calls")
	}
}

func TestCheck(t *testing.T) {
	values := map[string]float64{
		"SR1_POSITION": 4.00005, // within tolerance
		"SR1_EXTRA1":   1,
		"SR2_RC_CHAN":  0,
		"OTHER":        7,
	}
	got := Check(values, StreamRates())
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 discrepancies", got)
	}
	if got[0].Name != "SR1_EXTRA1" || got[1].Name != "SR2_RC_CHAN" {
		t.Errorf("order = %s, %s", got[0].Name, got[1].Name)
	}
	if got[0].String() != "SR1_EXTRA1 should be 3.0 (currently 1.0)" {
		t.Errorf("String = %q", got[0].String())
	}
}

func TestValuesAndCorrections(t *testing.T) {
	values := Values([]types.ParamValue{
		{ID: "SR1_EXTRA1", Value: 1},
		{ID: "SR1_EXTRA1", Value: 2},
	})
	if values["SR1_EXTRA1"] != 2 {
		t.Errorf("later report did not win: %v", values)
	}

	msgs := Corrections(Check(values, StreamRates()), 1, 0)
	if len(msgs) != 1 {
		t.Fatalf("got %d corrections", len(msgs))
	}
	m := msgs[0]
	if m.Type != types.MsgParamSet {
		t.Errorf("Type = %s", m.Type)
	}
	if id, _ := m.String("param_id"); id != "SR1_EXTRA1" {
		t.Errorf("param_id = %q", id)
	}
	if v, _ := m.Float("param_value"); v != 3 {
		t.Errorf("param_value = %v", v)
	}
}
