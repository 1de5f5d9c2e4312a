package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VideosIngested counts successfully completed ingestions by source
	// ("upload" or "import").
	VideosIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "klipz_videos_ingested_total",
		Help: "Number of videos successfully ingested into the catalog.",
	}, []string{"source"})

	// IngestFailures counts pipeline failures by source.
	IngestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "klipz_ingest_failures_total",
		Help: "Number of failed ingestion attempts.",
	}, []string{"source"})

	// ActiveImports tracks URL imports currently running in the background.
	ActiveImports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "klipz_active_imports",
		Help: "URL imports currently in flight.",
	})
)
