package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/wiless/farfield"
	"github.com/wiless/farfield/deployment"
)

// Task is the unit of work of a remote worker: one element of the run Run.
type Task struct {
	Run     string       `json:"run"`
	Index   int          `json:"index"`
	Element [5]float64   `json:"element"`
	Job     farfield.Job `json:"job"`
}

func NewTask(run string, index int, el deployment.Element, job farfield.Job) Task {
	return Task{Run: run, Index: index, Element: el.Tuple(), Job: job}
}

func (t Task) Elem() (deployment.Element, error) {
	return deployment.ElementFromTuple(t.Element[:])
}

func (t Task) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

func UnmarshalTask(payload []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("dispatch: bad task payload: %w", err)
	}
	return t, nil
}
