// Package scene groups animated GameObjects that share one mix table and
// advances them together each tick.
package scene

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/game_object"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// Scene manages a registry of GameObjects whose animation states read one
// shared MixTable. Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently updated by the engine.
	Active() bool

	// SetActive sets whether this scene is updated by the engine.
	SetActive(active bool)

	// MixTable returns the table shared by every object spawned in this scene.
	//
	// Returns:
	//   - animator.MixTable: the shared mix table
	MixTable() animator.MixTable

	// Count returns the number of GameObjects in the scene's registry.
	//
	// Returns:
	//   - int: count of registered GameObjects
	Count() int

	// Add registers a GameObject with the scene. Objects without an ID are
	// assigned the next free one. Adding an object whose ID is already
	// registered replaces the previous object.
	// Panics if obj is nil.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Spawn creates a GameObject from m whose animation state reads the
	// scene's MixTable, adds it, and returns it. Options are applied after
	// the model and table, so they may override either.
	//
	// Parameters:
	//   - m: the model to instance
	//   - options: additional GameObject options
	//
	// Returns:
	//   - game_object.GameObject: the registered object
	Spawn(m model.Model, options ...game_object.GameObjectBuilderOption) game_object.GameObject

	// Get retrieves a GameObject by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil if not registered
	Get(id uint64) game_object.GameObject

	// GameObjects returns the registered objects ordered by ID.
	//
	// Returns:
	//   - []game_object.GameObject: a snapshot of the registry
	GameObjects() []game_object.GameObject

	// Remove removes a GameObject from the registry by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: true if an object was removed
	Remove(id uint64) bool

	// Clear removes every GameObject from the scene.
	Clear()

	// Update animates every enabled GameObject by deltaTime. Objects are
	// animated in parallel on the scene's compute pool, one task per object,
	// and Update returns once all of them have finished.
	//
	// Parameters:
	//   - deltaTime: the elapsed time in seconds
	Update(deltaTime float32)

	// Release stops the scene's compute pool. The scene must not be updated afterwards.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	mixes  animator.MixTable
	logger *slog.Logger

	registry map[uint64]game_object.GameObject
	nextID   uint64

	// computePool runs one Animate task per object each Update. Workers are
	// reused across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
	released       bool
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given name and options.
// Without WithMixTable the scene gets its own empty table.
//
// Parameters:
//   - name: the scene identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		active:         true,
		registry:       make(map[uint64]game_object.GameObject),
		nextID:         1,
		computeWorkers: max(runtime.NumCPU()-1, 1),
		logger:         slog.New(slog.DiscardHandler),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.mixes == nil {
		s.mixes = animator.NewMixTable()
	}

	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	s.logger.Debug("scene created", "scene", s.name, "objects", len(s.registry), "workers", s.computeWorkers)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) MixTable() animator.MixTable {
	return s.mixes
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	if obj == nil {
		panic("scene: cannot Add a nil GameObject")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(obj)
	return obj.ID()
}

// register assigns an ID if needed and stores obj. Caller must hold s.mu write lock.
func (s *scene) register(obj game_object.GameObject) {
	if obj.ID() == 0 {
		for s.registry[s.nextID] != nil {
			s.nextID++
		}
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.registry[obj.ID()] = obj
}

func (s *scene) Spawn(m model.Model, options ...game_object.GameObjectBuilderOption) game_object.GameObject {
	opts := append([]game_object.GameObjectBuilderOption{
		game_object.WithModel(m),
		game_object.WithMixTable(s.mixes),
	}, options...)
	obj := game_object.NewGameObject(opts...)
	s.Add(obj)
	return obj
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) GameObjects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objs := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		objs = append(objs, obj)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].ID() < objs[j].ID() })
	return objs
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[id]; !exists {
		return false
	}
	delete(s.registry, id)
	return true
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]game_object.GameObject)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.released {
		return
	}

	// A WaitGroup provides the per-frame barrier; pool.Wait() blocks until
	// workers idle-exit.
	var wg sync.WaitGroup
	taskID := 0
	for _, obj := range s.registry {
		if !obj.Enabled() {
			continue
		}

		wg.Add(1)
		objCap := obj
		id := taskID
		taskID++
		s.computePool.SubmitTask(worker.Task{
			ID:      id,
			Payload: objCap.ID(),
			Do: func() (any, error) {
				defer wg.Done()
				objCap.Animate(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true
	s.computePool.Stop()
	s.logger.Debug("scene released", "scene", s.name)
}
