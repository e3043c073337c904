package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"borgir/internal/flood"
	"borgir/internal/store"
)

// Metrics implements core.Recorder on top of Prometheus collectors.
type Metrics struct {
	CommandsTotal    *prometheus.CounterVec
	ResolutionsTotal *prometheus.CounterVec
	SongsPlayedTotal *prometheus.CounterVec
	PlaylistSizeG    prometheus.Gauge
	PlaybackActiveG  prometheus.Gauge

	registerer prometheus.Registerer
}

// NewMetrics creates the bot metrics and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "borgir_commands_total",
				Help: "Total number of chat commands handled",
			},
			[]string{"command", "status"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "borgir_resolutions_total",
				Help: "Total number of song lookups by cache result",
			},
			[]string{"result"},
		),
		SongsPlayedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "borgir_songs_played_total",
				Help: "Total number of songs taken off the playlist, by how they ended",
			},
			[]string{"outcome"},
		),
		PlaylistSizeG: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "borgir_playlist_size",
				Help: "Current number of songs waiting in the playlist",
			},
		),
		PlaybackActiveG: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "borgir_playback_active",
				Help: "1 while a song is streaming",
			},
		),
		registerer: registerer,
	}

	registerer.MustRegister(
		m.CommandsTotal,
		m.ResolutionsTotal,
		m.SongsPlayedTotal,
		m.PlaylistSizeG,
		m.PlaybackActiveG,
	)

	return m
}

func (m *Metrics) CommandHandled(command, status string) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
}

func (m *Metrics) Resolution(result string) {
	m.ResolutionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SongPlayed(outcome string) {
	m.SongsPlayedTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PlaylistSize(size int) {
	m.PlaylistSizeG.Set(float64(size))
}

func (m *Metrics) PlaybackActive(active bool) {
	if active {
		m.PlaybackActiveG.Set(1)
		return
	}
	m.PlaybackActiveG.Set(0)
}

// ObserveSongCache exports the song cache counters, read from stats on every scrape.
func (m *Metrics) ObserveSongCache(stats func() store.Stats) {
	m.registerer.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "borgir_song_cache_entries",
				Help: "Number of resolved songs in the cache",
			},
			func() float64 { return float64(stats().Size) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "borgir_song_cache_evictions_total",
				Help: "Total number of songs evicted from the cache",
			},
			func() float64 { return float64(stats().Evictions) },
		),
	)
}

// ObserveFloodGate exports how many users the flood gate is tracking.
func (m *Metrics) ObserveFloodGate(stats func() flood.Stats) {
	m.registerer.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "borgir_flood_tracked_users",
				Help: "Number of users with recent commands",
			},
			func() float64 { return float64(stats().TrackedUsers) },
		),
	)
}
