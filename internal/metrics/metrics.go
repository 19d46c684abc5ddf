package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"livecal/internal/extract"
	"livecal/internal/model"
)

// Collector holds the feed pipeline metrics. Each Collector registers into
// its own registerer, so tests can use a fresh prometheus.NewRegistry().
type Collector struct {
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastSuccessTS   prometheus.Gauge
	eventsTotal     *prometheus.CounterVec
	linksMissing    *prometheus.CounterVec
	concerts        prometheus.Gauge
}

func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livecal",
			Name:      "refresh_total",
			Help:      "Feed refreshes by result",
		}, []string{"result"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "livecal",
			Name:      "refresh_duration_seconds",
			Help:      "Time spent fetching, parsing and aggregating the feed",
			Buckets:   prometheus.DefBuckets,
		}),
		lastSuccessTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "livecal",
			Name:      "last_refresh_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livecal",
			Name:      "events_total",
			Help:      "Feed events seen, by outcome and failing field",
		}, []string{"outcome", "field"}),
		linksMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livecal",
			Name:      "links_missing_total",
			Help:      "Concerts published without a given optional link",
		}, []string{"link"}),
		concerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "livecal",
			Name:      "concerts",
			Help:      "Concerts in the current snapshot",
		}),
	}
	reg.MustRegister(c.refreshTotal, c.refreshDuration, c.lastSuccessTS, c.eventsTotal, c.linksMissing, c.concerts)
	return c
}

func (c *Collector) RefreshFailed(seconds float64) {
	c.refreshTotal.WithLabelValues("error").Inc()
	c.refreshDuration.Observe(seconds)
}

func (c *Collector) RefreshSucceeded(seconds float64, unixNow float64, published int) {
	c.refreshTotal.WithLabelValues("ok").Inc()
	c.refreshDuration.Observe(seconds)
	c.lastSuccessTS.Set(unixNow)
	c.concerts.Set(float64(published))
}

func (c *Collector) EventSkipped(field string) {
	c.eventsTotal.WithLabelValues("skipped", field).Inc()
}

func (c *Collector) EventsFiltered(n int) {
	c.eventsTotal.WithLabelValues("past", "").Add(float64(n))
}

// ConcertPublished counts an aggregated concert and any links it lacks.
func (c *Collector) ConcertPublished(con model.Concert) {
	c.eventsTotal.WithLabelValues("ok", "").Inc()
	for link, v := range map[string]*string{
		extract.LinkImage:    con.ImageURL,
		extract.LinkTwitter:  con.TwitterURL,
		extract.LinkYoutube:  con.YoutubeURL,
		extract.LinkTicket:   con.TicketURL,
		extract.LinkOfficial: con.OfficialURL,
	} {
		if v == nil {
			c.linksMissing.WithLabelValues(link).Inc()
		}
	}
}
