// Package sim runs the headless simulation loop: an ark ECS world of
// organisms whose behavior comes entirely from their brains. Physics talks to
// each brain only through module ports, and brains are evaluated in parallel
// across workers since no state is shared between them.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/vat/brain"
	"github.com/pthm-cable/vat/components"
	"github.com/pthm-cable/vat/config"
	"github.com/pthm-cable/vat/genome"
	"github.com/pthm-cable/vat/modules"
	"github.com/pthm-cable/vat/mutation"
	"github.com/pthm-cable/vat/systems"
	"github.com/pthm-cable/vat/telemetry"
)

// Sim owns the world, the brains, and the tick loop.
type Sim struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	tick  int64

	entityMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Organism,
	]
	entityFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Organism,
	]
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	rotMap    *ecs.Map1[components.Rotation]
	bodyMap   *ecs.Map1[components.Body]
	energyMap *ecs.Map1[components.Energy]
	orgMap    *ecs.Map1[components.Organism]

	spatialGrid *systems.SpatialGrid

	// brains live outside the ECS, keyed by organism ID, so component
	// storage stays plain value data.
	brains map[uint32]*brain.Brain
	nextID uint32

	parallel  *parallelState
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	aliveCount int
}

// New creates a simulation with the initial population spawned.
func New(cfg *config.Config, seed int64, output *telemetry.OutputManager) *Sim {
	world := ecs.NewWorld()

	s := &Sim{
		cfg:    cfg,
		world:  world,
		rng:    rand.New(rand.NewSource(seed)),
		brains: make(map[uint32]*brain.Brain),
		entityMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Organism,
		](world),
		entityFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Organism,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		rotMap:    ecs.NewMap1[components.Rotation](world),
		bodyMap:   ecs.NewMap1[components.Body](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		orgMap:    ecs.NewMap1[components.Organism](world),
	}

	s.spatialGrid = systems.NewSpatialGrid(cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(cfg.Physics.GridCellSize))
	s.parallel = newParallelState()
	s.collector = telemetry.NewCollector(cfg.Telemetry.WindowSec, cfg.Physics.DT)
	s.output = output

	for i := 0; i < cfg.Population.Initial; i++ {
		s.spawnRandom()
	}
	slog.Info("simulation initialized", "population", s.aliveCount, "seed", seed)
	return s
}

// Tick returns the current tick number.
func (s *Sim) Tick() int64 {
	return s.tick
}

// Population returns the current number of living organisms.
func (s *Sim) Population() int {
	return s.aliveCount
}

// spawnRandom creates an organism with a bootstrap brain at a random position.
func (s *Sim) spawnRandom() {
	x := s.rng.Float32() * s.cfg.Derived.WorldW32
	y := s.rng.Float32() * s.cfg.Derived.WorldH32
	heading := s.rng.Float32() * 2 * math.Pi

	b := brain.New(s.rng.Int63())
	modules.InitializeTier1(b)
	modules.BootstrapWiring(b, s.rng, s.cfg.Brain.ConnectionProb)
	modules.SeedGeneValues(b, s.rng)

	s.spawn(x, y, heading, b, 0)
}

// spawn creates an entity wired to the given brain.
func (s *Sim) spawn(x, y, heading float32, b *brain.Brain, generation uint32) {
	id := s.nextID
	s.nextID++

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: heading}
	body := components.Body{Radius: float32(s.cfg.Entity.BodyRadius)}
	energy := components.Energy{
		Value: float32(s.cfg.Entity.InitialEnergy),
		Max:   float32(s.cfg.Entity.MaxEnergy),
		Alive: true,
	}
	org := components.Organism{
		ID:            id,
		Generation:    generation,
		ReproCooldown: float32(s.cfg.Reproduction.MaturityAge),
	}

	s.brains[id] = b
	s.entityMapper.NewEntity(&pos, &vel, &rot, &body, &energy, &org)
	s.aliveCount++
}

// Step advances the simulation one tick.
func (s *Sim) Step() {
	s.tick++

	s.updateSpatialGrid()
	s.updateBrainsAndPhysics()
	s.updateFeeding()
	s.updateEnergy()
	s.updateLifecycle()
	s.updateTelemetry()
}

// Run advances until maxTicks (0 = run forever) or context cancellation.
func (s *Sim) Run(ctx context.Context, maxTicks int64) error {
	for maxTicks == 0 || s.tick < maxTicks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
	}
	return nil
}

// Close stops worker goroutines.
func (s *Sim) Close() {
	s.parallel.stopWorkers()
}

// updateSpatialGrid rebuilds the spatial index.
func (s *Sim) updateSpatialGrid() {
	s.spatialGrid.Clear()

	query := s.entityFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, _, _, energy, _ := query.Get()
		if energy.Alive {
			s.spatialGrid.Insert(entity, pos.X, pos.Y)
		}
	}
}

// updateFeeding transfers energy on successful bites.
func (s *Sim) updateFeeding() {
	biteGain := float32(s.cfg.Energy.BiteGain)
	scratch := &s.parallel.scratches[0]

	query := s.entityFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, _, body, energy, org := query.Get()
		if !energy.Alive || org.LastBite <= 0.5 {
			continue
		}

		biteRange := body.Radius * 2
		scratch.Neighbors = s.spatialGrid.QueryRadiusInto(scratch.Neighbors[:0], pos.X, pos.Y, biteRange, entity, s.posMap)
		for _, n := range scratch.Neighbors {
			target := s.energyMap.Get(n.E)
			if target == nil || !target.Alive || target.Value <= 0 {
				continue
			}
			taken := biteGain
			if taken > target.Value {
				taken = target.Value
			}
			target.Value -= taken
			energy.Value += taken * 0.8 // transfer losses
			if energy.Value > energy.Max {
				energy.Value = energy.Max
			}
			s.collector.RecordBite()
			break // one bite per tick
		}
	}
}

// updateEnergy applies metabolic drain, grazing, and aging.
func (s *Sim) updateEnergy() {
	dt := s.cfg.Derived.DT32
	baseCost := float32(s.cfg.Energy.BaseCost)
	moveCost := float32(s.cfg.Energy.MoveCost)
	grazeGain := float32(s.cfg.Energy.GrazeGain)
	stillSpeed := float32(s.cfg.Energy.StillSpeed)

	query := s.entityFilter.Query()
	for query.Next() {
		_, vel, _, _, energy, org := query.Get()
		if !energy.Alive {
			continue
		}

		energy.Age += dt
		if org.ReproCooldown > 0 {
			org.ReproCooldown -= dt
		}

		drain := baseCost + moveCost*org.LastThrust
		energy.Value -= drain * dt

		// Slow organisms graze ambient resources.
		speedSq := vel.X*vel.X + vel.Y*vel.Y
		if speedSq < stillSpeed*stillSpeed {
			energy.Value += grazeGain * dt
		}
		if energy.Value > energy.Max {
			energy.Value = energy.Max
		}
	}
}

// updateLifecycle handles starvation deaths and reproduction.
func (s *Sim) updateLifecycle() {
	type deadEntity struct {
		entity ecs.Entity
		id     uint32
	}
	var dead []deadEntity
	type birth struct {
		x, y, heading float32
		parent        uint32
		generation    uint32
	}
	var births []birth

	threshold := float32(s.cfg.Reproduction.EnergyThreshold)
	urgeGate := s.cfg.Reproduction.UrgeThreshold
	split := float32(s.cfg.Reproduction.ParentEnergySplit)

	query := s.entityFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, rot, _, energy, org := query.Get()
		if !energy.Alive {
			continue
		}

		if energy.Value <= 0 {
			energy.Alive = false
			dead = append(dead, deadEntity{entity, org.ID})
			s.collector.RecordDeath(true)
			continue
		}

		if org.ReproCooldown > 0 || energy.Value < energy.Max*threshold {
			continue
		}
		b := s.brains[org.ID]
		if b == nil || b.GetModuleInput(modules.DefReproduction, 0) < urgeGate {
			continue
		}

		energy.Value -= energy.Max * split
		org.ReproCooldown = float32(s.cfg.Reproduction.Cooldown)

		offset := float32(s.cfg.Reproduction.SpawnOffset)
		births = append(births, birth{
			x:          pos.X + (s.rng.Float32()*2 - 1)*offset,
			y:          pos.Y + (s.rng.Float32()*2 - 1)*offset,
			heading:    rot.Heading + (s.rng.Float32() - 0.5),
			parent:     org.ID,
			generation: org.Generation + 1,
		})
	}

	for _, d := range dead {
		delete(s.brains, d.id)
		s.entityMapper.Remove(d.entity)
		s.aliveCount--
	}

	for _, b := range births {
		if s.aliveCount >= s.cfg.Population.Max {
			break
		}
		parent := s.brains[b.parent]
		if parent == nil {
			continue
		}
		child := parent.Clone()
		mutation.Apply(child, s.rng, s.mutationParams())
		s.spawn(b.x, b.y, b.heading, child, b.generation)
		s.collector.RecordBirth()
	}

	// Keep a minimum viable population by reseeding fresh lineages.
	if s.aliveCount < s.cfg.Population.RespawnThreshold {
		for i := 0; i < s.cfg.Population.RespawnCount; i++ {
			s.spawnRandom()
			s.collector.RecordBirth()
		}
		slog.Info("population reseeded", "tick", s.tick, "population", s.aliveCount)
	}
}

func (s *Sim) mutationParams() mutation.Params {
	m := s.cfg.Mutation
	return mutation.Params{
		Rate:              m.Rate,
		Sigma:             m.Sigma,
		BigRate:           m.BigRate,
		BigSigma:          m.BigSigma,
		AddNodeProb:       m.AddNodeProb,
		AddConnectionProb: m.AddConnectionProb,
		ToggleProb:        m.ToggleProb,
		NodeParamProb:     m.NodeParamProb,
	}
}

// updateTelemetry samples and emits window stats when a window closes.
func (s *Sim) updateTelemetry() {
	if !s.collector.WindowClosed(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick)
	stats.Population = s.aliveCount

	var energies, nodeCounts, connCounts []float64
	var maxGen uint32
	query := s.entityFilter.Query()
	for query.Next() {
		_, _, _, _, energy, org := query.Get()
		if !energy.Alive {
			continue
		}
		energies = append(energies, float64(energy.Value))
		if b := s.brains[org.ID]; b != nil {
			nodeCounts = append(nodeCounts, float64(b.NodeCount()))
			connCounts = append(connCounts, float64(b.ConnectionCount()))
		}
		if org.Generation > maxGen {
			maxGen = org.Generation
		}
	}
	stats.SampleEnergy(energies)
	stats.SampleComplexity(nodeCounts, connCounts)
	stats.MaxGeneration = maxGen

	stats.Log()
	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Warn("telemetry write failed", "error", err)
	}
}

// SaveSnapshot persists every living brain to the store.
func (s *Sim) SaveSnapshot(ctx context.Context, store genome.Store) error {
	query := s.entityFilter.Query()
	for query.Next() {
		_, _, _, _, energy, org := query.Get()
		if !energy.Alive {
			continue
		}
		b := s.brains[org.ID]
		if b == nil {
			continue
		}
		rec := genome.Encode(fmt.Sprintf("organism-%d", org.ID), b)
		if err := store.SaveBrain(ctx, rec); err != nil {
			return fmt.Errorf("saving organism %d: %w", org.ID, err)
		}
	}
	return nil
}
