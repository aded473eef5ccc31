// Package paramcheck compares telemetry stream-rate parameters against the
// rates a ground station expects and builds the PARAM_SET corrections.
package paramcheck

import (
	"fmt"
	"math"
	"sort"

	"github.com/pithecene-io/flightreplay/types"
)

// Tolerance is the largest difference treated as equal.
const Tolerance = 0.0001

// ParamTypeReal32 is the PARAM_SET type tag for float parameters.
const ParamTypeReal32 = 9

// StreamRates returns the expected stream rates (Hz) per telemetry port.
// SR1 is the primary telemetry radio; SR2 and SR3 feed the companion links.
func StreamRates() map[string]float64 {
	return map[string]float64{
		"SR1_EXTRA1":   3,
		"SR1_EXTRA2":   2,
		"SR1_EXTRA3":   2,
		"SR1_EXT_STAT": 2,
		"SR1_PARAMS":   10,
		"SR1_POSITION": 4,
		"SR1_RAW_CTRL": 2,
		"SR1_RAW_SENS": 1,
		"SR1_RC_CHAN":  1,
		"SR2_EXTRA1":   4,
		"SR2_EXTRA2":   4,
		"SR2_EXTRA3":   4,
		"SR2_EXT_STAT": 4,
		"SR2_PARAMS":   10,
		"SR2_POSITION": 4,
		"SR2_RAW_CTRL": 4,
		"SR2_RAW_SENS": 4,
		"SR2_RC_CHAN":  4,
		"SR3_EXTRA1":   4,
		"SR3_EXTRA2":   4,
		"SR3_EXTRA3":   4,
		"SR3_EXT_STAT": 4,
		"SR3_PARAMS":   10,
		"SR3_POSITION": 4,
		"SR3_RAW_CTRL": 4,
		"SR3_RAW_SENS": 4,
		"SR3_RC_CHAN":  4,
	}
}

// Discrepancy is a parameter whose value differs from its target.
type Discrepancy struct {
	Name    string  `json:"name" yaml:"name"`
	Want    float64 `json:"want" yaml:"want"`
	Current float64 `json:"current" yaml:"current"`
}

// String renders the discrepancy as an operator hint.
func (d Discrepancy) String() string {
	return fmt.Sprintf("%s should be %.1f (currently %.1f)", d.Name, d.Want, d.Current)
}

// Check returns the targets whose current value is off by more than
// Tolerance, sorted by name. Targets absent from values are not reported.
func Check(values, targets map[string]float64) []Discrepancy {
	var out []Discrepancy
	for name, want := range targets {
		have, ok := values[name]
		if !ok {
			continue
		}
		if math.Abs(have-want) > Tolerance {
			out = append(out, Discrepancy{Name: name, Want: want, Current: have})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Values indexes parameter reports by id. Later reports win.
func Values(params []types.ParamValue) map[string]float64 {
	out := make(map[string]float64, len(params))
	for _, p := range params {
		out[p.ID] = p.Value
	}
	return out
}

// Corrections builds one PARAM_SET message per discrepancy.
func Corrections(ds []Discrepancy, targetSystem, targetComponent int) []*types.Message {
	out := make([]*types.Message, 0, len(ds))
	for _, d := range ds {
		out = append(out, &types.Message{
			Type: types.MsgParamSet,
			Fields: map[string]any{
				"target_system":    targetSystem,
				"target_component": targetComponent,
				"param_id":         d.Name,
				"param_value":      d.Want,
				"param_type":       ParamTypeReal32,
			},
		})
	}
	return out
}
