package ml

import (
	"fmt"
	"math"

	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmachina/net"
	"github.com/drakos74/go-ex-machina/xmachina/net/ff"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Network is a feed forward network with one hidden layer and a single sigmoid output.
// Targets are expected within [0,1].
type Network struct {
	hidden int
	rate   float64
	epochs int
	dim    int
	net    *ff.Network
}

func NewNetwork(hidden int, rate float64, epochs int) *Network {
	if hidden <= 0 {
		hidden = DefaultConfig().Hidden
	}
	if rate <= 0 {
		rate = DefaultConfig().Rate
	}
	if epochs <= 0 {
		epochs = DefaultConfig().Iterations
	}
	return &Network{
		hidden: hidden,
		rate:   rate,
		epochs: epochs,
	}
}

func (n *Network) build(dim int) *ff.Network {
	rate := xml.Learn(n.rate, n.rate)
	initW := xmath.Rand(-1, 1, math.Sqrt)
	initB := xmath.Rand(-1, 1, math.Sqrt)
	network := ff.New(dim, 1).
		Add(n.hidden, net.NewBuilder().
			WithModule(xml.Base().
				WithRate(rate).
				WithActivation(xml.TanH)).
			WithWeights(initW, initB).
			Factory(net.NewActivationCell)).
		Add(1, net.NewBuilder().
			WithModule(xml.Base().
				WithRate(rate).
				WithActivation(xml.Sigmoid)).
			WithWeights(initW, initB).
			Factory(net.NewActivationCell))
	network.Loss(xml.Pow)
	return network
}

// Fit trains the network online, one row at a time, for the configured number of epochs.
func (n *Network) Fit(x mat.Matrix, y []float64) error {
	xx, yy, err := rows(x, y)
	if err != nil {
		return err
	}
	if len(xx) == 0 {
		return fmt.Errorf("no labeled rows: %w", NotEnoughDataErr)
	}
	n.dim = len(xx[0])
	n.net = n.build(n.dim)
	var loss float64
	for e := 0; e < n.epochs; e++ {
		loss = 0
		for i, row := range xx {
			l, _ := n.net.Train(xmath.Vec(n.dim).With(row...), xmath.Vec(1).With(yy[i]))
			loss += l.Sum()
		}
	}
	log.Debug().
		Int("rows", len(xx)).
		Int("epochs", n.epochs).
		Float64("loss", loss/float64(len(xx))).
		Msg("network trained")
	return nil
}

func (n *Network) Predict(x []float64) (float64, error) {
	if n.net == nil {
		return 0, NotTrainedErr
	}
	if len(x) != n.dim {
		return 0, fmt.Errorf("%d features for network of %d inputs", len(x), n.dim)
	}
	out := n.net.Predict(xmath.Vec(n.dim).With(x...))
	return out[0], nil
}
