package metrics

import (
	"github.com/MetalBlockchain/metalgo/utils/wrappers"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	blkLabel    = "blk"
	resultLabel = "result"
)

var (
	blkLabels    = []string{blkLabel}
	resultLabels = []string{resultLabel}
)

type blockMetrics struct {
	numBlocks *prometheus.CounterVec
	height    prometheus.Gauge
}

func newBlockMetrics(registerer prometheus.Registerer) (*blockMetrics, error) {
	m := &blockMetrics{
		numBlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blks_accepted",
				Help: "number of blocks accepted",
			},
			blkLabels,
		),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chain_height",
			Help: "height of the last accepted block",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.numBlocks),
		registerer.Register(m.height),
	)
	return m, errs.Err
}

func (m *blockMetrics) accepted(blk *block.Block) {
	kind := "registration"
	if blk.Height() == 0 {
		kind = "genesis"
	}
	m.numBlocks.With(prometheus.Labels{
		blkLabel: kind,
	}).Inc()
	m.height.Set(float64(blk.Height()))
}
