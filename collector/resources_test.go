package collector

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"diagd/models"

	"go.uber.org/zap"
	"gotest.tools/v3/assert"
)

type fakeInfo struct {
	model    string
	modelErr error

	samples   []models.CPUSample
	sampleErr error
	calls     int
}

func (f *fakeInfo) ProcessorModelName(ctx context.Context) (string, error) {
	return f.model, f.modelErr
}

func (f *fakeInfo) CPUTickSample(ctx context.Context) (models.CPUSample, error) {
	if f.sampleErr != nil {
		return models.CPUSample{}, f.sampleErr
	}
	s := f.samples[f.calls%len(f.samples)]
	f.calls++
	return s, nil
}

func sample(idle, nonIdle uint64) models.CPUSample {
	return models.CPUSample{Idle: idle, NonIdle: nonIdle, Total: idle + nonIdle}
}

func TestComputeLoad(t *testing.T) {
	cases := []struct {
		name          string
		first, second models.CPUSample
		want          float64
	}{
		{"half busy", sample(100, 100), sample(150, 150), 50},
		{"fully idle", sample(100, 100), sample(200, 100), 0},
		{"fully busy", sample(100, 100), sample(100, 300), 100},
		{"quarter busy", sample(0, 0), sample(75, 25), 25},
		{"no elapsed ticks", sample(100, 100), sample(100, 100), 0},
		{"counters went backwards", sample(500, 500), sample(100, 100), 0},
		{"idle went backwards", sample(100, 100), sample(90, 150), 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeLoad(tc.first, tc.second)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestFormatLoad(t *testing.T) {
	assert.Equal(t, FormatLoad(0), "0.00%\n")
	assert.Equal(t, FormatLoad(12.345), "12.35%\n")
	assert.Equal(t, FormatLoad(100), "100.00%\n")
}

func TestResources_Load(t *testing.T) {
	info := &fakeInfo{samples: []models.CPUSample{sample(100, 100), sample(130, 170)}}
	r := NewResources(info, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	got := string(r.Load(context.Background()))

	assert.Assert(t, time.Since(start) >= 20*time.Millisecond, "load returned before the sample delay")
	assert.Equal(t, info.calls, 2)
	assert.Equal(t, got, "70.00%\n")
	assert.Assert(t, regexp.MustCompile(`^\d+\.\d{2}%\n$`).MatchString(got))
}

func TestResources_LoadSampleError(t *testing.T) {
	info := &fakeInfo{sampleErr: errors.New("no /proc")}
	r := NewResources(info, 0, zap.NewNop())

	assert.Equal(t, string(r.Load(context.Background())), LoadFallback+"\n")
}

func TestResources_LoadCancelled(t *testing.T) {
	info := &fakeInfo{samples: []models.CPUSample{sample(1, 1)}}
	r := NewResources(info, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, string(r.Load(ctx)), LoadFallback+"\n")
	assert.Equal(t, info.calls, 1)
}

func TestResources_CPUName(t *testing.T) {
	cases := []struct {
		name string
		info *fakeInfo
		want string
	}{
		{"squeezes whitespace", &fakeInfo{model: "  Intel(R)   Core(TM)\ti7-8650U  CPU @ 1.90GHz \n"}, "Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz\n"},
		{"empty output", &fakeInfo{model: ""}, CPUNameFallback + "\n"},
		{"lookup error", &fakeInfo{modelErr: errors.New("exit status 1")}, CPUNameFallback + "\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResources(tc.info, 0, zap.NewNop())
			assert.Equal(t, string(r.CPUName(context.Background())), tc.want)
		})
	}
}

func TestResources_HostName(t *testing.T) {
	r := NewResources(&fakeInfo{}, 0, zap.NewNop())
	r.hostname = func() (string, error) { return "box-01", nil }

	assert.Equal(t, string(r.HostName(context.Background())), "box-01\n")
}

func TestResources_HostNameFallback(t *testing.T) {
	r := NewResources(&fakeInfo{}, 0, zap.NewNop())
	r.hostname = func() (string, error) { return "", errors.New("uname failed") }

	got := string(r.HostName(context.Background()))
	assert.Assert(t, len(got) > 1)
	assert.Equal(t, got[len(got)-1], byte('\n'))
}
