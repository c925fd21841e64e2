package trainer

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/retroterm/arcade"
)

// parallelThreshold is the minimum population to evaluate in parallel.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 8

// workChunk is a range of games for one worker to play out.
type workChunk struct {
	start, end int
}

// evaluator plays every game of a generation to completion on a pool of
// persistent workers. Games share no mutable state, so chunks need no locking.
type evaluator struct {
	games      []arcade.Game
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newEvaluator(workers int) *evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &evaluator{numWorkers: workers}
}

func (e *evaluator) start() {
	if e.running {
		return
	}

	e.workChan = make(chan workChunk, e.numWorkers)
	e.doneChan = make(chan struct{}, e.numWorkers)
	e.stopChan = make(chan struct{})
	e.running = true

	for i := 0; i < e.numWorkers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (e *evaluator) stop() {
	if !e.running {
		return
	}

	close(e.stopChan)
	e.wg.Wait()
	close(e.workChan)
	close(e.doneChan)
	e.running = false
}

func (e *evaluator) worker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.stopChan:
			return
		case chunk, ok := <-e.workChan:
			if !ok {
				return
			}
			playChunk(e.games[chunk.start:chunk.end])
			e.doneChan <- struct{}{}
		}
	}
}

func playChunk(games []arcade.Game) {
	for _, g := range games {
		arcade.Play(g, 0)
	}
}

// evaluate plays all games to completion and returns once every one is done.
func (e *evaluator) evaluate(games []arcade.Game) {
	n := len(games)
	if n < parallelThreshold || e.numWorkers == 1 {
		playChunk(games)
		return
	}

	if !e.running {
		e.start()
	}
	e.games = games

	chunkSize := (n + e.numWorkers - 1) / e.numWorkers
	dispatched := 0
	for w := 0; w < e.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		e.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-e.doneChan
	}
	e.games = nil
}
