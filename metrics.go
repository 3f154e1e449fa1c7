package audiodsp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stage int

const (
	stageInputResample stage = iota
	stagePreProcess
	stageMaster
	stagePostProcess
	stageOutputResample
	stageCount
)

var stageNames = [stageCount]string{
	"input_resample", "pre_process", "master", "post_process", "output_resample",
}

type metrics struct {
	activeStreams   prometheus.Gauge
	streamsCreated  prometheus.Counter
	streamsRejected prometheus.Counter
	blocks          [stageCount]prometheus.Counter
	clampedSamples  prometheus.Counter
	calibration     prometheus.Counter
	modeSelections  *prometheus.CounterVec
	maxDelay        prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	blocks := f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiodsp_blocks_processed_total",
			Help: "Total number of audio blocks processed per pipeline stage",
		},
		[]string{"stage"},
	)

	m := &metrics{
		activeStreams: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "audiodsp_active_streams",
				Help: "Number of streams currently registered",
			},
		),
		streamsCreated: f.NewCounter(
			prometheus.CounterOpts{
				Name: "audiodsp_streams_created_total",
				Help: "Total number of streams created",
			},
		),
		streamsRejected: f.NewCounter(
			prometheus.CounterOpts{
				Name: "audiodsp_streams_rejected_total",
				Help: "Total number of stream creations rejected",
			},
		),
		clampedSamples: f.NewCounter(
			prometheus.CounterOpts{
				Name: "audiodsp_soft_clamped_samples_total",
				Help: "Total number of samples driven into the soft clamp",
			},
		),
		calibration: f.NewCounter(
			prometheus.CounterOpts{
				Name: "audiodsp_calibration_blocks_total",
				Help: "Total number of post-process blocks replaced by a calibration signal",
			},
		),
		modeSelections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audiodsp_mode_selections_total",
				Help: "Total number of master mode selections by result",
			},
			[]string{"result"},
		),
		maxDelay: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "audiodsp_max_speaker_delay_seconds",
				Help: "Largest configured speaker distance delay",
			},
		),
	}

	// Resolve the label children once so the audio path never allocates.
	for s := range stageCount {
		m.blocks[s] = blocks.WithLabelValues(stageNames[s])
	}
	return m
}
