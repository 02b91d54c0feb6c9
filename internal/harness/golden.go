package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/besselx/internal/ir"
)

// Report is the canonical, platform-stable form of a Result.
//
// Values are rounded to nine significant digits so that last-ulp
// differences between platforms do not churn golden files. The run id is
// left out because it depends on the store.
func Report(r *Result) ir.Object {
	cases := make(ir.Array, len(r.Cases))
	for i, c := range r.Cases {
		orders := make(ir.Array, len(c.Orders))
		for j, o := range c.Orders {
			orders[j] = ir.String(strconv.FormatFloat(o, 'g', -1, 64))
		}
		values := make(ir.Array, len(c.Values))
		for j, v := range c.Values {
			values[j] = ir.Array{ir.String(formatComponent(real(v))), ir.String(formatComponent(imag(v)))}
		}
		warnings := make(ir.Array, len(c.Warnings))
		for j, w := range c.Warnings {
			warnings[j] = ir.String(w.Message)
		}
		cases[i] = ir.Object{
			"name":     ir.String(c.Name),
			"function": ir.String(c.Function),
			"orders":   orders,
			"values":   values,
			"error":    ir.String(c.ErrorCode),
			"warnings": warnings,
			"pass":     ir.Bool(c.Pass),
		}
	}
	return ir.Object{
		"scenario": ir.String(r.Scenario),
		"pass":     ir.Bool(r.Pass),
		"cases":    cases,
	}
}

func formatComponent(x float64) string {
	return strconv.FormatFloat(x, 'e', 8, 64)
}

// MarshalReport renders Report(r) as RFC 8785 canonical JSON.
func MarshalReport(r *Result) ([]byte, error) {
	return ir.MarshalCanonical(Report(r))
}

// AssertGolden compares a result's report against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalReport(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
