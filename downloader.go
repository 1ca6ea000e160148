package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultDir     = "imagenes_descargadas"
	defaultWorkers = 16
)

type Downloader struct {
	Http     http.Client
	searcher ImageSearcher
	dir      string
	workers  int
	log      *log.Logger
}

// NewDownloader wires a searcher to an output directory, creating the
// directory (parents included) when it does not exist yet.
func NewDownloader(cfg *Config, searcher ImageSearcher) (*Downloader, error) {
	dir := cfg.Download.Dir
	if dir == "" {
		dir = defaultDir
	}
	workers := cfg.Download.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Downloader{
		Http:     http.Client{Timeout: time.Duration(cfg.Download.TimeoutSeconds) * time.Second},
		searcher: searcher,
		dir:      dir,
		workers:  workers,
		log:      log.New(os.Stderr, "(download) ", log.LstdFlags),
	}, nil
}

func (d *Downloader) Dir() string {
	return d.dir
}

// Run searches for query and downloads every returned URL, at most
// d.workers at a time. It blocks until every task has finished and
// reports one result per task; a failed task never aborts the batch.
func (d *Downloader) Run(query string, count int) *Report {
	report := &Report{
		RunID:     uuid.New().String(),
		Query:     query,
		Requested: count,
	}

	urls, err := d.searcher.Search(query, count)
	if err != nil || len(urls) == 0 {
		d.log.Println("No images found for", query)
		return report
	}

	tasks := BuildTasks(urls)
	report.Results = make([]DownloadResult, len(tasks))

	jobs := make(chan DownloadTask, len(tasks))
	results := make(chan DownloadResult)

	var wg sync.WaitGroup
	for i := 0; i < min(d.workers, len(tasks)); i++ {
		wg.Add(1)
		go d.worker(jobs, results, &wg)
	}
	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		report.Results[res.Task.Index-1] = res
	}
	d.log.Println("Run", report.RunID, "finished:", report.Succeeded(), "of", len(tasks), "downloads completed")
	return report
}

func (d *Downloader) worker(jobs <-chan DownloadTask, results chan<- DownloadResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range jobs {
		start := time.Now()
		n, err := d.fetch(task.URL, task.Filename)
		res := DownloadResult{
			Task:     task,
			Success:  err == nil,
			Bytes:    n,
			Duration: time.Since(start),
		}
		if err != nil {
			res.Error = err.Error()
			d.log.Println("Failed to download", task.Filename+":", err.Error())
		} else {
			d.log.Println("Download completed:", task.Filename)
		}
		results <- res
	}
}

// fetch streams one image to dir/filename, overwriting any previous file.
// A failure mid-copy leaves the partial file behind.
func (d *Downloader) fetch(rawUrl, filename string) (int64, error) {
	req, err := newGetRequest(rawUrl)
	if err != nil {
		return 0, err
	}
	resp, err := d.Http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return 0, err
	}
	out, err := os.Create(filepath.Join(d.dir, filename))
	if err != nil {
		return 0, err
	}
	defer out.Close()

	return io.Copy(out, body)
}
