package metrics

import (
	"github.com/MetalBlockchain/metalgo/utils/wrappers"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/MetalBlockchain/starchain/status"
	"github.com/prometheus/client_golang/prometheus"
)

var _ Metrics = (*metrics)(nil)

type Metrics interface {
	// Mark that the given block was appended to the chain.
	MarkAccepted(blk *block.Block)

	// Mark the outcome of a star submission.
	MarkSubmission(result status.Status)
}

func New(registerer prometheus.Registerer) (Metrics, error) {
	blockMetrics, err := newBlockMetrics(registerer)
	errs := wrappers.Errs{Err: err}

	submissions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "star_submissions",
			Help: "number of star submissions by result",
		},
		resultLabels,
	)
	errs.Add(registerer.Register(submissions))

	return &metrics{
		blockMetrics: blockMetrics,
		submissions:  submissions,
	}, errs.Err
}

type metrics struct {
	blockMetrics *blockMetrics
	submissions  *prometheus.CounterVec
}

func (m *metrics) MarkAccepted(blk *block.Block) {
	m.blockMetrics.accepted(blk)
}

func (m *metrics) MarkSubmission(result status.Status) {
	m.submissions.With(prometheus.Labels{
		resultLabel: result.String(),
	}).Inc()
}
