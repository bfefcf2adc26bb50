package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Archive holds the domain counters of the document archive.
// A nil *Archive is valid and records nothing.
type Archive struct {
	stored   prometheus.Counter
	rejected *prometheus.CounterVec
	thumbs   prometheus.Counter
	reserved prometheus.Counter
}

// NewArchive creates the archive counters and registers them with reg.
func NewArchive(reg prometheus.Registerer) (*Archive, error) {
	m := &Archive{
		stored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docarchive_documents_stored_total",
			Help: "Documents accepted and written to the store.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docarchive_uploads_rejected_total",
			Help: "Uploads refused, by reason.",
		}, []string{"reason"}),
		thumbs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docarchive_thumbnails_generated_total",
			Help: "Page thumbnails written to the store.",
		}),
		reserved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docarchive_archive_numbers_reserved_total",
			Help: "Archive numbers handed out to documents.",
		}),
	}
	for _, c := range []prometheus.Collector{m.stored, m.rejected, m.thumbs, m.reserved} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Archive) DocumentStored(thumbs int) {
	if m == nil {
		return
	}
	m.stored.Inc()
	m.ThumbnailsGenerated(thumbs)
}

func (m *Archive) UploadRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Archive) ThumbnailsGenerated(n int) {
	if m == nil {
		return
	}
	m.thumbs.Add(float64(n))
}

func (m *Archive) NumbersReserved(n int64) {
	if m == nil {
		return
	}
	m.reserved.Add(float64(n))
}
