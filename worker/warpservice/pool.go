package warpservice

import (
	"fmt"
	"log"
	"math/rand"
)

const DefaultQueueSizePerProcess = 200

// ProcessPool fans warp tasks out to a fixed set of worker subprocesses
// through a shared queue. Crashed or recycled workers are replaced in place;
// the jitter on MaxTasks keeps the pool from recycling every worker at once.
type ProcessPool struct {
	Pool      []*Process
	PoolSize  int
	TaskQueue chan *Task
	MaxTasks  int
	ErrorMsg  chan *ErrorMsg
}

func (p *ProcessPool) AddQueue(task *Task) {
	if len(p.TaskQueue) > DefaultQueueSizePerProcess*len(p.Pool)-10 {
		task.Error <- fmt.Errorf("Pool TaskQueue is full")
		return
	}
	p.TaskQueue <- task
}

func (p *ProcessPool) CreateProcess(executable string, verbose bool) (*Process, error) {
	maxTasks := p.MaxTasks
	if maxTasks > 0 {
		maxTasks += rand.Intn(p.PoolSize + 1)
	}
	proc := NewProcess(p.TaskQueue, executable, p.ErrorMsg, maxTasks, verbose)
	err := proc.Start()

	return proc, err
}

func (p *ProcessPool) DeleteProcessPool() {
	for _, proc := range p.Pool {
		if proc != nil {
			proc.RemoveTempFiles()
		}
	}
}

func CreateProcessPool(n int, executable string, maxTasks int, verbose bool) (*ProcessPool, error) {

	p := &ProcessPool{[]*Process{}, n, make(chan *Task, DefaultQueueSizePerProcess*n), maxTasks, make(chan *ErrorMsg)}

	go func() {
		for {
			select {
			case err := <-p.ErrorMsg:
				if err.Replace {
					if verbose {
						log.Printf("Process: %v, %v, restarting...", err.Address, err.Error)
					}
					for ip, proc := range p.Pool {
						if proc == nil {
							continue
						}
						if err.Address == proc.Address {
							p.Pool[ip] = nil
							proc, err := p.CreateProcess(executable, verbose)
							if err == nil {
								p.Pool[ip] = proc
							}
							break
						}
					}
				} else if verbose {
					log.Printf("Process: %v, %v", err.Address, err.Error)
				}
			}
		}
	}()

	for i := 0; i < n; i++ {
		proc, err := p.CreateProcess(executable, verbose)
		if err != nil {
			return nil, err
		}
		p.Pool = append(p.Pool, proc)
	}

	return p, nil
}
