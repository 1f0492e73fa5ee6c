package service

// operationUpdateStep caps how often progress counters are written
// back: once every hundred records plus the unconditional final write.
const operationUpdateStep = 100

type progress struct {
	persisted int
}

func (p *progress) due(processed int) bool {
	return processed-p.persisted > operationUpdateStep
}

func (p *progress) mark(processed int) {
	p.persisted = processed
}
