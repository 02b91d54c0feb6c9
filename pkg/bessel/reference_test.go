package bessel

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/besselx/pkg/kernel"
	"github.com/roach88/besselx/pkg/kernel/series"
)

// End-to-end reference values. Each was computed directly at the signed
// order, without going through a connection formula.
var referenceCases = []struct {
	name string
	req  Request
	want []complex128
}{
	{
		name: "iv consecutive orders",
		req:  Request{Family: FamilyI, Scaling: kernel.Unscaled, Nu: 0, Z: complex(1, 1), N: 3},
		want: []complex128{
			complex(0.9376084768060292, 0.4965299476091221),
			complex(0.36502802882708796, 0.6141603349229036),
			complex(-0.041579886943962134, 0.24739764151330643),
		},
	},
	{
		name: "iv negative integer batch",
		req:  Request{Family: FamilyI, Scaling: kernel.Unscaled, Nu: -1, Z: complex(1, 1), N: 2},
		want: []complex128{
			complex(0.36502802882708796, 0.6141603349229036),
			complex(-0.041579886943962134, 0.24739764151330643),
		},
	},
	{
		name: "iv negative fractional",
		req:  Request{Family: FamilyI, Scaling: kernel.Unscaled, Nu: -0.5, Z: complex(0.7, -0.3), N: 3},
		want: []complex128{
			complex(1.1151521802990845, 0.0196583237036182),
			complex(-0.6184612699193618, -0.7995137413826027),
			complex(2.1137837313099763, 3.874130737205153),
		},
	},
	{
		name: "iv negative fractional left half plane",
		req:  Request{Family: FamilyI, Scaling: kernel.Unscaled, Nu: -1.25, Z: complex(-0.4, 0.9), N: 2},
		want: []complex128{
			complex(0.47973382749616683, 0.7232267644662308),
			complex(-0.6152032121236225, 1.3084573157503008),
		},
	},
	{
		name: "ive negative fractional",
		req:  Request{Family: FamilyI, Scaling: kernel.Scaled, Nu: -0.5, Z: complex(0.7, -0.3), N: 3},
		want: []complex128{
			complex(0.5537681842274735, 0.009762034648391111),
			complex(-0.3071187776061272, -0.3970267741498862),
			complex(1.0496739363619039, 1.9238363890626582),
		},
	},
	{
		name: "ive negative fractional left half plane",
		req:  Request{Family: FamilyI, Scaling: kernel.Scaled, Nu: -1.25, Z: complex(-0.4, 0.9), N: 2},
		want: []complex128{
			complex(0.321575201332084, 0.4847933980512103),
			complex(-0.41238304547197985, 0.8770851681294107),
		},
	},
	{
		name: "ive positive fractional",
		req:  Request{Family: FamilyI, Scaling: kernel.Scaled, Nu: 0.75, Z: complex(1.2, 0.5), N: 2},
		want: []complex128{
			complex(0.2521549969517461, 0.12416292013033636),
			complex(0.06861809137024819, 0.07021820959763045),
		},
	},
	{
		name: "hankel1 integer orders",
		req:  Request{Family: FamilyHankel1, Scaling: kernel.Unscaled, Nu: 0, Z: complex(1, 1), N: 3},
		want: []complex128{
			complex(0.22744989480229483, -0.05105545867308953),
			complex(-0.01564066906998074, -0.29266650676425743),
			complex(-0.535757070636533, -0.22597037902118702),
		},
	},
	{
		name: "hankel1 negative fractional",
		req:  Request{Family: FamilyHankel1, Scaling: kernel.Unscaled, Nu: -1.3, Z: complex(0.8, -0.6), N: 3},
		want: []complex128{
			complex(-1.3145188115227004, -0.015612820303775754),
			complex(1.608861642682659, 1.1007446262916478),
			complex(-1.56803686498453, -8.475585538253625),
		},
	},
	{
		name: "hankel2e integer orders",
		req:  Request{Family: FamilyHankel2, Scaling: kernel.Scaled, Nu: 0, Z: complex(1, 1), N: 3},
		want: []complex128{
			complex(0.619127025278164, 0.3228440080493),
			complex(-0.06933651311139508, 0.5883631034850111),
			complex(-0.10010043490454804, 0.33485560854710605),
		},
	},
	{
		name: "hankel2e negative fractional",
		req:  Request{Family: FamilyHankel2, Scaling: kernel.Scaled, Nu: -1.3, Z: complex(0.8, -0.6), N: 3},
		want: []complex128{
			complex(0.3524510733389236, -1.1597964661365485),
			complex(-3.1367165257325396, 1.3856732774740665),
			complex(15.015123987185245, 4.71785641605378),
		},
	},
	{
		name: "kv negative fractional",
		req:  Request{Family: FamilyK, Scaling: kernel.Unscaled, Nu: -0.5, Z: complex(1, 1), N: 2},
		want: []complex128{
			complex(0.06868578341999547, -0.3815782598126837),
			complex(-0.08776045477634695, -0.6067102814290234),
		},
	},
	{
		name: "kv integer",
		req:  Request{Family: FamilyK, Scaling: kernel.Unscaled, Nu: 2, Z: complex(0.9, 0.2), N: 1},
		want: []complex128{complex(1.7416899288439736, -0.966318743921443)},
	},
}

func newSeriesEvaluator(t *testing.T) (*Evaluator, *Collector) {
	t.Helper()
	sink := &Collector{}
	return New(series.New(series.DefaultConfig()), WithSink(sink)), sink
}

func TestSeriesReferenceValues(t *testing.T) {
	for _, tc := range referenceCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, sink := newSeriesEvaluator(t)

			got, err := ev.Evaluate(tc.req)
			require.NoError(t, err)
			require.Len(t, got, len(tc.want))
			for i := range got {
				assertClose(t, tc.want[i], got[i], 1e-12, "element %d (order %g)", i, tc.req.Orders()[i])
			}
			assert.Equal(t, 0, sink.Len(), "reference points are well conditioned")
		})
	}
}

func TestSeriesIntegerSymmetry(t *testing.T) {
	ev, _ := newSeriesEvaluator(t)
	z := complex(1, 1)

	neg, err := ev.Iv(-2, z)
	require.NoError(t, err)
	pos, err := ev.Iv(2, z)
	require.NoError(t, err)
	assert.Equal(t, pos, neg)
}

func TestSeriesReflectionLaw(t *testing.T) {
	ev, _ := newSeriesEvaluator(t)
	backend := series.New(series.DefaultConfig())

	for _, nu := range []float64{0.25, 0.5, 1.7, 2.3} {
		for _, z := range []complex128{complex(1, 1), complex(0.5, -2), complex(-1.5, 0.3)} {
			neg, err := ev.Iv(-nu, z)
			require.NoError(t, err)
			pos, err := ev.Iv(nu, z)
			require.NoError(t, err)
			k := backend.K(z, nu, kernel.Unscaled, 1)
			require.Equal(t, kernel.StatusNormal, k.Status)

			want := pos + complex(2/math.Pi*math.Sin(math.Pi*nu), 0)*k.Values[0]
			assertClose(t, want, neg, 1e-12, "nu=%g z=%v", nu, z)
		}
	}
}

func TestSeriesHankelPhaseLaw(t *testing.T) {
	ev, _ := newSeriesEvaluator(t)

	for _, nu := range []float64{0.3, 1, 1.5, 2.75} {
		z := complex(1.2, -0.4)

		h1neg, err := ev.Hankel1(-nu, z, 1)
		require.NoError(t, err)
		h1pos, err := ev.Hankel1(nu, z, 1)
		require.NoError(t, err)
		assertClose(t, h1pos[0]*cmplx.Exp(complex(0, math.Pi*nu)), h1neg[0], 1e-12, "H1 nu=%g", nu)

		h2neg, err := ev.Hankel2(-nu, z, 1)
		require.NoError(t, err)
		h2pos, err := ev.Hankel2(nu, z, 1)
		require.NoError(t, err)
		assertClose(t, h2pos[0]*cmplx.Exp(complex(0, -math.Pi*nu)), h2neg[0], 1e-12, "H2 nu=%g", nu)
	}
}

func TestSeriesKSymmetry(t *testing.T) {
	ev, _ := newSeriesEvaluator(t)
	z := complex(0.6, 0.9)

	for _, nu := range []float64{0.5, 1.3, 2} {
		neg, err := ev.Kv(-nu, z)
		require.NoError(t, err)
		pos, err := ev.Kv(nu, z)
		require.NoError(t, err)
		assert.Equal(t, pos, neg)
	}
}

func TestSeriesOverflowWarns(t *testing.T) {
	ev, sink := newSeriesEvaluator(t)

	got, err := ev.Kv(200.5, complex(0.01, 0))
	require.NoError(t, err, "overflow is recoverable")
	assert.True(t, cmplx.IsInf(got))

	warnings := sink.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "kv", warnings[0].Function)
	assert.Contains(t, warnings[0].Message, "Overflow")
}

func TestSeriesConcurrentEvaluation(t *testing.T) {
	ev, _ := newSeriesEvaluator(t)
	tc := referenceCases[2]

	want, err := ev.Evaluate(tc.req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]complex128, 32)
	errs := make([]error, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ev.Evaluate(tc.req)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestPackageLevelFunctionsUseDefault(t *testing.T) {
	ev, sink := newSeriesEvaluator(t)
	prev := Default()
	SetDefault(ev)
	t.Cleanup(func() { SetDefault(prev) })

	got, err := Iv(0, complex(1, 1))
	require.NoError(t, err)
	assertClose(t, referenceCases[0].want[0], got, 1e-12)

	_, err = IvVec(0, complex(1, 1), 0)
	assert.True(t, IsInputError(err))
	assert.Equal(t, 0, sink.Len())

	SetDefault(nil)
	assert.NotNil(t, Default())
	assert.NotSame(t, ev, Default())
}
