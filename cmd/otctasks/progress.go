package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/otctasks/internal/engine"
	"github.com/alexisbeaulieu97/otctasks/internal/model"
	"github.com/alexisbeaulieu97/otctasks/internal/tui"
)

// progressView feeds engine events to the progress model. On a terminal the
// model runs as a Bubbletea program; otherwise it is updated in place and
// its final view is printed once.
type progressView struct {
	mu      sync.Mutex
	out     io.Writer
	state   tui.Model
	program *tea.Program
	done    chan struct{}
	err     error
}

func startProgress(out io.Writer, interactive bool, onCancel func()) *progressView {
	p := &progressView{out: out, state: tui.NewModel(onCancel)}
	if interactive {
		p.program = tea.NewProgram(p.state, tea.WithOutput(out))
		p.done = make(chan struct{})
		go func() {
			_, p.err = p.program.Run()
			close(p.done)
		}()
	}
	return p
}

func (p *progressView) PlanReady(playbook string, plan *engine.ExecutionPlan, checkMode bool) {
	p.send(tui.PlanMsg{Playbook: playbook, Plan: plan, CheckMode: checkMode})
}

func (p *progressView) TaskStarted(taskID string) {
	p.send(tui.TaskStartMsg{ID: taskID, Time: time.Now()})
}

func (p *progressView) TaskFinished(result model.TaskResult) {
	p.send(tui.TaskCompleteMsg{Result: result})
}

// finish reports the final summary and waits for the program to exit.
func (p *progressView) finish(summary model.Summary, runErr error) error {
	p.send(tui.FinishedMsg{Summary: summary, Err: runErr})
	if p.program != nil {
		<-p.done
		return p.err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.out, p.state.View())
	return err
}

func (p *progressView) send(msg tea.Msg) {
	if p.program != nil {
		p.program.Send(msg)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	updated, _ := p.state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		p.state = m
	}
}
