package adc

import (
	"context"
	"log"
	"time"
)

// Sampler continuously refreshes the shared light cell from the
// sensor. It is the free-running conversion loop of the node: it never
// buffers and never blocks the control loop.
type Sampler struct {
	reader Reader
	cell   *Cell
}

// NewSampler creates a Sampler that stores readings into cell.
func NewSampler(reader Reader, cell *Cell) *Sampler {
	return &Sampler{
		reader: reader,
		cell:   cell,
	}
}

// Run samples at the given interval until the context is canceled.
// Read errors are logged and the previous reading stands.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			light, err := s.reader.Read()
			if err != nil {
				log.Printf("adc read error: %v", err)
				continue
			}
			s.cell.Store(light)
		}
	}
}
