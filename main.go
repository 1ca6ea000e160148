package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

type Config struct {
	Pixabay struct {
		Key string `json:"key"`
	} `json:"pixabay.com"`
	Download struct {
		Dir            string `json:"dir"`
		Workers        int    `json:"workers"`
		TimeoutSeconds int    `json:"timeoutSeconds"`
	} `json:"download"`
	Database string `json:"database"`
	Debug    struct {
		PrettyJson bool `json:"prettyJson"`
	}
}

func processError(err error) {
	fmt.Println(err.Error())
	os.Exit(2)
}

func loadConfig(cfg *Config, path string) {

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Println("No configuration file at", path, "- using defaults")
		return
	}
	if err != nil {
		processError(err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	switch err := decoder.Decode(cfg).(type) {
	case nil:
	case *json.SyntaxError:
		f.Seek(0, io.SeekStart)
		pos := findPos(bufio.NewReader(f), int(err.Offset))
		log.Panicf("Unable to decode configuration file (Line: %d, Pos: %d); - %v\n", pos.line, pos.pos, err.Error())
	default:
		processError(err)
	}
}

type FilePos struct {
	line int
	pos  int
}

func findPos(file *bufio.Reader, offset int) FilePos {
	p := FilePos{line: 1, pos: offset}
	var lineLen int
	for line, err := file.ReadBytes('\n'); len(line) > 0 && err == nil; line, err = file.ReadBytes('\n') {
		if p.pos < len(line) {
			return p
		}
		lineLen += len(line)
		if line[len(line)-1] == '\n' {
			p.line += 1
			p.pos -= lineLen
			lineLen = 0
		}
	}
	return p
}

func main() {
	query := flag.String("q", "", "search keyword (required)")
	count := flag.Int("n", 50, "number of images to request")
	confPath := flag.String("config", "conf/config.json", "path to the configuration file")
	dir := flag.String("dir", "", "download directory (overrides config)")
	workers := flag.Int("workers", 0, "max concurrent downloads (overrides config)")
	flag.Parse()

	if *query == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -q <keyword> [-n <count>]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	var cfg Config
	loadConfig(&cfg, *confPath)
	if *dir != "" {
		cfg.Download.Dir = *dir
	}
	if *workers > 0 {
		cfg.Download.Workers = *workers
	}
	if cfg.Pixabay.Key == "" {
		cfg.Pixabay.Key = os.Getenv("PIXABAY_API_KEY")
	}
	if cfg.Pixabay.Key == "" {
		processError(errors.New("no Pixabay API key configured (pixabay.com.key or PIXABAY_API_KEY)"))
	}

	var reqCache *ReqCache
	if cfg.Database != "" {
		store, err := NewStore(cfg.Database)
		if err != nil {
			log.Println("Response cache disabled:", err.Error())
		} else {
			reqCache = NewReqCache(store)
		}
	}

	api := NewPixabayApi(&cfg, reqCache)
	dl, err := NewDownloader(&cfg, &api)
	if err != nil {
		processError(err)
	}

	report := dl.Run(*query, *count)
	if cfg.Debug.PrettyJson {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return
	}
	fmt.Printf("%d of %d images downloaded to %s\n", report.Succeeded(), len(report.Results), dl.Dir())
}
