package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const ChatCompletionsURL = "/v1/chat/completions"

// ErrNoPrompts is returned when a task file would be empty.
var ErrNoPrompts = errors.New("the prompts list is empty")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TaskBody struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// Task is one line of a batch input file.
type Task struct {
	CustomID string   `json:"custom_id"`
	Method   string   `json:"method"`
	URL      string   `json:"url"`
	Body     TaskBody `json:"body"`
}

// NewTasks wraps every prompt in a chat completion request.
func NewTasks(prompts []string, model string, temperature float64) []Task {
	tasks := make([]Task, 0, len(prompts))
	for i, p := range prompts {
		tasks = append(tasks, Task{
			CustomID: fmt.Sprintf("task-%d", i),
			Method:   "POST",
			URL:      ChatCompletionsURL,
			Body: TaskBody{
				Model:       model,
				Temperature: temperature,
				Messages:    []Message{{Role: "user", Content: p}},
			},
		})
	}
	zap.S().Infof("created %d tasks", len(tasks))
	return tasks
}

// TaskFilePath is where the batch input for step is written.
func TaskFilePath(dir, step string) string {
	return filepath.Join(dir, fmt.Sprintf("batchinput_%s.jsonl", step))
}

// WriteTaskFile writes one JSON object per line and returns the file path.
func WriteTaskFile(dir, step string, tasks []Task) (string, error) {
	if len(tasks) == 0 {
		return "", ErrNoPrompts
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create batch directory")
	}
	path := TaskFilePath(dir, step)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create task file")
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, t := range tasks {
		if err := enc.Encode(t); err != nil {
			_ = f.Close()
			return "", errors.Wrapf(err, "encode %s", t.CustomID)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return "", errors.Wrap(err, "flush task file")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close task file")
	}
	zap.S().Infof("tasks saved to %s", path)
	return path, nil
}
