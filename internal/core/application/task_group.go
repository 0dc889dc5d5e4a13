package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// TaskGroup supervises long running tasks. Shutting a group down cancels
// the context of its tasks and of all its subgroups.
type TaskGroup struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	lock      sync.Mutex
	subgroups []*TaskGroup
}

func NewTaskGroup(ctx context.Context) *TaskGroup {
	ctx, cancel := context.WithCancel(ctx)
	return &TaskGroup{ctx: ctx, cancel: cancel}
}

func (tg *TaskGroup) MakeSubgroup() *TaskGroup {
	tg.lock.Lock()
	defer tg.lock.Unlock()

	sub := NewTaskGroup(tg.ctx)
	tg.subgroups = append(tg.subgroups, sub)
	return sub
}

// Spawn runs task in its own goroutine. A panicking task is logged and
// stops, it never takes the process down.
func (tg *TaskGroup) Spawn(name string, task func(ctx context.Context)) {
	tg.wg.Go(func() {
		log.Debugf("task %s started", name)

		var catcher panics.Catcher
		catcher.Try(func() { task(tg.ctx) })
		if recovered := catcher.Recovered(); recovered != nil {
			log.WithField("task", name).Errorf(
				"task panicked: %s", recovered.String(),
			)
			return
		}

		log.Debugf("task %s stopped", name)
	})
}

func (tg *TaskGroup) Context() context.Context {
	return tg.ctx
}

func (tg *TaskGroup) IsShuttingDown() bool {
	return tg.ctx.Err() != nil
}

func (tg *TaskGroup) Shutdown() {
	tg.cancel()
}

// Join waits for the tasks of the group and of its subgroups to return.
func (tg *TaskGroup) Join() {
	tg.lock.Lock()
	subgroups := append([]*TaskGroup{}, tg.subgroups...)
	tg.lock.Unlock()

	for _, sub := range subgroups {
		sub.Join()
	}
	tg.wg.Wait()
}
