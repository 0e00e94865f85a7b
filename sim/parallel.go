package sim

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/vat/brain"
	"github.com/pthm-cable/vat/components"
	"github.com/pthm-cable/vat/systems"
)

// parallelThreshold is the minimum entity count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// entitySnapshot captures read-only state for parallel processing.
type entitySnapshot struct {
	Entity ecs.Entity
	ID     uint32
	Pos    components.Position
	Vel    components.Velocity
	Rot    components.Rotation
	Body   components.Body
	Energy components.Energy
	Brain  *brain.Brain
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
}

// workChunk represents a range of entities for a worker to process.
type workChunk struct {
	start, end int
	dt         float32
	tick       int64
}

// parallelState holds resources for parallel brain evaluation.
type parallelState struct {
	snapshots  []entitySnapshot
	intents    []systems.Intent
	scratches  []workerScratch
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
		snapshots:  make([]entitySnapshot, 0, 512),
		intents:    make([]systems.Intent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Sim) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Sim, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, scratch, chunk.dt, chunk.tick)
			p.doneChan <- struct{}{}
		}
	}
}

// updateBrainsAndPhysics snapshots the world, evaluates every brain, and
// applies the resulting intents. Each brain is private to one organism, so
// the compute phase has no shared mutable state.
func (s *Sim) updateBrainsAndPhysics() {
	dt := s.cfg.Derived.DT32

	// Phase A: build snapshots (single-threaded)
	s.parallel.snapshots = s.parallel.snapshots[:0]

	query := s.entityFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, rot, body, energy, org := query.Get()

		if !energy.Alive {
			continue
		}
		b, ok := s.brains[org.ID]
		if !ok {
			continue
		}

		s.parallel.snapshots = append(s.parallel.snapshots, entitySnapshot{
			Entity: entity,
			ID:     org.ID,
			Pos:    *pos,
			Vel:    *vel,
			Rot:    *rot,
			Body:   *body,
			Energy: *energy,
			Brain:  b,
		})
	}

	n := len(s.parallel.snapshots)
	if n == 0 {
		return
	}

	if cap(s.parallel.intents) < n {
		s.parallel.intents = make([]systems.Intent, n)
	}
	s.parallel.intents = s.parallel.intents[:n]

	// Phase B: compute, single or parallel based on population
	if n < parallelThreshold {
		s.computeChunk(0, n, &s.parallel.scratches[0], dt, s.tick)
	} else {
		s.computeParallel(n, dt)
	}

	// Phase C: apply intents (single-threaded, preserves determinism)
	s.applyIntents()
}

// computeParallel dispatches work to the worker pool.
func (s *Sim) computeParallel(n int, dt float32) {
	if !s.parallel.running {
		s.parallel.startWorkers(s)
	}

	numWorkers := s.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		s.parallel.workChan <- workChunk{start: start, end: end, dt: dt, tick: s.tick}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-s.parallel.doneChan
	}
}

// computeChunk processes a range of entities for a single worker: sensor
// write, one brain tick, actuator read.
func (s *Sim) computeChunk(i0, i1 int, scratch *workerScratch, dt float32, tick int64) {
	visionRange := float32(s.cfg.Entity.VisionRange)
	limits := systems.ActuatorLimits{
		MaxSpeed:    float32(s.cfg.Entity.MaxSpeed),
		MaxTurnRate: float32(s.cfg.Entity.MaxTurnRate),
		Drag:        float32(s.cfg.Entity.Drag),
	}

	for i := i0; i < i1; i++ {
		snap := &s.parallel.snapshots[i]

		scratch.Neighbors = s.spatialGrid.QueryRadiusInto(
			scratch.Neighbors[:0],
			snap.Pos.X, snap.Pos.Y, visionRange,
			snap.Entity, s.posMap,
		)

		frame := systems.SensorFrame{
			Pos:         snap.Pos,
			Rot:         snap.Rot,
			Energy:      snap.Energy,
			Body:        snap.Body,
			VisionRange: visionRange,
			Neighbors:   scratch.Neighbors,
			Tick:        tick,
			DT:          dt,
		}
		systems.WriteSensors(snap.Brain, &frame, s.neighborRadius)

		snap.Brain.Process(tick)

		s.parallel.intents[i] = systems.ReadActuators(
			snap.Brain, snap.Pos, snap.Vel, snap.Rot,
			limits, s.cfg.Derived.WorldW32, s.cfg.Derived.WorldH32, dt,
		)
	}
}

// neighborRadius resolves a neighbor's body radius for vision classification.
// Read-only component access, safe from workers.
func (s *Sim) neighborRadius(n systems.Neighbor) float32 {
	body := s.bodyMap.Get(n.E)
	if body == nil {
		return 0
	}
	return body.Radius
}

// applyIntents writes computed results back to ECS components.
func (s *Sim) applyIntents() {
	for i, snap := range s.parallel.snapshots {
		intent := &s.parallel.intents[i]

		pos := s.posMap.Get(snap.Entity)
		vel := s.velMap.Get(snap.Entity)
		rot := s.rotMap.Get(snap.Entity)
		if pos == nil || vel == nil || rot == nil {
			continue
		}

		rot.Heading = intent.NewHeading
		vel.X = intent.NewVelX
		vel.Y = intent.NewVelY
		pos.X = intent.NewPosX
		pos.Y = intent.NewPosY

		org := s.orgMap.Get(snap.Entity)
		if org != nil {
			org.LastThrust = intent.Thrust
			org.LastBite = intent.Bite
		}
	}
}
