package evaluation

import (
	"os"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/dtmc"
	"github.com/offload-sim/offload-sim/sim/lp"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestAlphaRange(t *testing.T) {
	alphas, err := AlphaRange(0.1, 0.5, 0.1)
	require.NoError(t, err)
	require.Len(t, alphas, 5)
	assert.InDelta(t, 0.1, alphas[0], 1e-12)
	assert.InDelta(t, 0.5, alphas[4], 1e-12)

	single, err := AlphaRange(0.3, 0.3, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3}, single)

	_, err = AlphaRange(0.1, 0.5, 0)
	assert.Error(t, err)
	_, err = AlphaRange(0, 0.5, 0.1)
	assert.Error(t, err)
	_, err = AlphaRange(0.6, 0.5, 0.1)
	assert.Error(t, err)
}

func testHarness(alphas []float64, workers int) *Harness {
	base := sim.Config{
		TaskQueueCapacity:   3,
		TUNumberOfPackets:   1,
		CPUNumberOfSections: 2,
		Beta:                0.6,
		LocalPower:          1,
		TransmitPower:       0.5,
		DropTolerance:       0.2,
	}
	return &Harness{Base: base, Alphas: alphas, Precision: 2, Ticks: 4000, Seed: 3, Workers: workers}
}

func TestHarness_Run(t *testing.T) {
	alphas := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	res, err := testHarness(alphas, 4).Run()
	require.NoError(t, err)

	require.Len(t, res.Outcomes, len(alphas))
	for i, o := range res.Outcomes {
		assert.Equal(t, alphas[i], o.Alpha)
		assert.Len(t, o.Effective, len(o.Reports))
	}
	require.Len(t, res.EffectivePercent, len(PolicyNames))
	for name, pct := range res.EffectivePercent {
		assert.GreaterOrEqual(t, pct, 0.0, name)
		assert.LessOrEqual(t, pct, 100.0, name)
	}
}

func TestHarness_ResultIndependentOfWorkers(t *testing.T) {
	alphas := []float64{0.2, 0.4, 0.6}
	serial, err := testHarness(alphas, 1).Run()
	require.NoError(t, err)
	parallel, err := testHarness(alphas, 8).Run()
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestHarness_InvalidAlpha(t *testing.T) {
	_, err := testHarness([]float64{0.5, 1.5}, 2).Run()
	assert.Error(t, err)

	_, err = testHarness(nil, 2).Run()
	assert.Error(t, err)
}

// recordingBuilder counts the programs built per arrival probability.
type recordingBuilder struct {
	mu      sync.Mutex
	builder *lp.Builder
	calls   map[float64]int
}

func (b *recordingBuilder) Build(cfg sim.Config) (*lp.Program, error) {
	b.mu.Lock()
	b.calls[cfg.Alpha]++
	b.mu.Unlock()
	return b.builder.Build(cfg)
}

func TestHarness_SharesOneBuilderAcrossAlphas(t *testing.T) {
	alphas := []float64{0.2, 0.5, 0.8}
	h := testHarness(alphas, 3)
	builder := &recordingBuilder{
		builder: lp.NewBuilder(dtmc.NewCreator(h.Base).Build()),
		calls:   make(map[float64]int),
	}
	h.Builder = builder

	shared, err := h.Run()
	require.NoError(t, err)
	for _, alpha := range alphas {
		assert.Equal(t, h.Precision+1, builder.calls[alpha], "alpha=%v", alpha)
	}

	h.Builder = nil
	own, err := h.Run()
	require.NoError(t, err)
	assert.Equal(t, own, shared)
}
