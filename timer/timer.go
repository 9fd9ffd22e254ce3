// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is one scheduled callback. Interval > 0 reschedules it after each
// fire.
type Task struct {
	Id       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Manager schedules delayed callbacks: automated-player turns, trade
// prompts and turn-inactivity timeouts.
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextId   int64
	trigger  chan *Task
	stopChan chan struct{}
}

func NewManager() *Manager {
	manager := &Manager{
		queue:    make(taskQueue, 0),
		trigger:  make(chan *Task, 1000),
		nextId:   1,
		stopChan: make(chan struct{}),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

// Schedule registers a callback to run after delay. A non-zero interval
// reschedules it after each run. Returns the task id for cancellation.
func (m *Manager) Schedule(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &Task{
		Id:       m.nextId,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextId++

	heap.Push(&m.queue, task)
	return task.Id
}

// Cancel removes a scheduled task. Canceling an already-fired one-shot task
// is a no-op.
func (m *Manager) Cancel(taskId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.Id == taskId {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts the manager down; pending tasks never fire.
func (m *Manager) Stop() {
	close(m.stopChan)
}

func (m *Manager) process() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return

		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()

			for m.queue.Len() > 0 {
				task := m.queue[0]
				if task.Execute.After(now) {
					break
				}

				heap.Pop(&m.queue)
				m.trigger <- task

				if task.Interval > 0 {
					task.Execute = now.Add(task.Interval)
					heap.Push(&m.queue, task)
				}
			}
			m.mutex.Unlock()

		case task := <-m.trigger:
			go task.Callback()
		}
	}
}
