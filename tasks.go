package main

import (
	"fmt"
	"time"
)

type DownloadTask struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type DownloadResult struct {
	Task     DownloadTask  `json:"task"`
	Success  bool          `json:"success"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Report describes one download run: the query that produced it and one
// result per task, ordered by task index.
type Report struct {
	RunID     string           `json:"runId"`
	Query     string           `json:"query"`
	Requested int              `json:"requested"`
	Results   []DownloadResult `json:"results"`
}

func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// BuildTasks pairs each URL with its destination filename. Positions are
// 1-based, so repeated runs overwrite imagen_1.jpg .. imagen_N.jpg in place.
func BuildTasks(urls []string) []DownloadTask {
	tasks := make([]DownloadTask, len(urls))
	for i, u := range urls {
		tasks[i] = DownloadTask{
			Index:    i + 1,
			URL:      u,
			Filename: TaskFilename(i + 1),
		}
	}
	return tasks
}

// TaskFilename is the destination name for the image at 1-based position i.
func TaskFilename(i int) string {
	return fmt.Sprintf("imagen_%d.jpg", i)
}
