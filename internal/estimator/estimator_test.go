package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinhak-lab/admitscan/internal/config"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func stockParams() Params {
	return Params{BaseSpreadMul: 0.8, WaitlistCoef: 0.1, WaitlistCap: 3.0}
}

func TestCut100_ReferenceScenario(t *testing.T) {
	// spread=0.20, relativeComp=1.00 -> factor 1.00,
	// waitlistRatio=min(10/20,3)=0.5 -> factor 1.05,
	// 2.30 + 0.20*0.8*1.00*1.05 = 2.468 -> 2.47
	got, err := Cut100(Inputs{
		Cut50:                2.10,
		Cut70:                2.30,
		CompetitionRate:      fp(5.0),
		Quota:                ip(20),
		WaitlistRank:         ip(10),
		SchoolAvgCompetition: 5.0,
	}, stockParams())
	require.NoError(t, err)
	assert.Equal(t, 2.47, got)
}

func TestCut100_CompetitionTiers(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		// spread=0.5, no waitlist: cut100 = 3.0 + 0.5*0.8*factor
		{"much more competitive", 8.0, 3.34},  // rel 2.0 -> 0.85
		{"more competitive", 5.6, 3.36},       // rel 1.4 -> 0.90
		{"near average", 4.0, 3.40},           // rel 1.0 -> 1.00
		{"less competitive", 2.4, 3.44},       // rel 0.6 -> 1.10
		{"much less competitive", 1.2, 3.46},  // rel 0.3 -> 1.15
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cut100(Inputs{
				Cut50:                2.5,
				Cut70:                3.0,
				CompetitionRate:      fp(tt.rate),
				SchoolAvgCompetition: 4.0,
			}, stockParams())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCut100_NilCompetitionUsesSchoolAverage(t *testing.T) {
	// Substituting the school average pins relativeComp at 1.0.
	got, err := Cut100(Inputs{
		Cut50:                2.5,
		Cut70:                3.0,
		SchoolAvgCompetition: 7.3,
	}, stockParams())
	require.NoError(t, err)
	assert.Equal(t, 3.40, got)
}

func TestCut100_ZeroSchoolAverage(t *testing.T) {
	// No competition signal anywhere: relativeComp pinned to 1.0.
	got, err := Cut100(Inputs{
		Cut50:           2.5,
		Cut70:           3.0,
		CompetitionRate: fp(12.0),
	}, stockParams())
	require.NoError(t, err)
	assert.Equal(t, 3.40, got)
}

func TestCut100_WaitlistCap(t *testing.T) {
	// 200 waitlisted against a quota of 10 would be ratio 20; capped at 3.0
	// the factor is 1.3, not 3.0.
	got, err := Cut100(Inputs{
		Cut50:                2.0,
		Cut70:                3.0,
		CompetitionRate:      fp(4.0),
		Quota:                ip(10),
		WaitlistRank:         ip(200),
		SchoolAvgCompetition: 4.0,
	}, stockParams())
	require.NoError(t, err)
	assert.Equal(t, 4.04, got) // 3.0 + 1.0*0.8*1.00*1.3
}

func TestCut100_QuotaFlooredAtOne(t *testing.T) {
	zero := 0
	got, err := Cut100(Inputs{
		Cut50:                2.0,
		Cut70:                3.0,
		CompetitionRate:      fp(4.0),
		Quota:                &zero,
		WaitlistRank:         ip(2),
		SchoolAvgCompetition: 4.0,
	}, stockParams())
	require.NoError(t, err)
	assert.Equal(t, 3.96, got) // ratio min(2/1,3)=2 -> factor 1.2
}

func TestCut100_EdgeRejection(t *testing.T) {
	tests := []struct {
		name  string
		cut50 float64
		cut70 float64
	}{
		{"cut70 below cut50", 3.0, 2.0},
		{"zero cut50", 0, 2.0},
		{"negative cut70", 2.0, -1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Cut100(Inputs{Cut50: tt.cut50, Cut70: tt.cut70}, stockParams())
			assert.Error(t, err)
		})
	}
}

func TestCut100_MonotonicInCut70(t *testing.T) {
	params := stockParams()
	prev := 0.0
	for cut70 := 2.1; cut70 <= 4.0; cut70 += 0.1 {
		got, err := Cut100(Inputs{
			Cut50:                2.1,
			Cut70:                cut70,
			CompetitionRate:      fp(5.0),
			SchoolAvgCompetition: 5.0,
		}, params)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCompetitionFactor_NonIncreasing(t *testing.T) {
	prev := 2.0
	for rel := 0.1; rel <= 3.0; rel += 0.05 {
		f := competitionFactor(rel)
		assert.LessOrEqual(t, f, prev, "factor rose at relativeComp %.2f", rel)
		prev = f
	}
}

func TestFromConfig_Overrides(t *testing.T) {
	p := FromConfig(config.EstimatorConfig{BaseSpreadMul: 0.5, WaitlistCoef: 0.2, WaitlistCap: 2.0})
	assert.Equal(t, 0.5, p.BaseSpreadMul)
	assert.Equal(t, 0.2, p.WaitlistCoef)
	assert.Equal(t, 2.0, p.WaitlistCap)
}

func TestFromConfig_ExplicitZeroDisablesWaitlistBump(t *testing.T) {
	p := FromConfig(config.EstimatorConfig{BaseSpreadMul: 0.8, WaitlistCoef: 0, WaitlistCap: 3.0})
	assert.Equal(t, 0.0, p.WaitlistCoef)

	// With the bump off, the reference scenario loses its 1.05 factor:
	// 2.30 + 0.20*0.8*1.00 = 2.46.
	got, err := Cut100(Inputs{
		Cut50:                2.10,
		Cut70:                2.30,
		CompetitionRate:      fp(5.0),
		Quota:                ip(20),
		WaitlistRank:         ip(10),
		SchoolAvgCompetition: 5.0,
	}, p)
	require.NoError(t, err)
	assert.Equal(t, 2.46, got)
}
