package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/apibillme/cache"
)

type PixabaySearchItem struct {
	Id            int    `json:"id"`
	Tags          string `json:"tags"`
	PreviewUrl    string `json:"previewURL"`
	WebFormatUrl  string `json:"webformatURL"`
	LargeImageUrl string `json:"largeImageURL"`
	User          string `json:"user"`
	PageUrl       string `json:"pageURL"`
}

type PixabaySearchResult struct {
	Total     int                 `json:"total"`
	TotalHits int                 `json:"totalHits"`
	Hits      []PixabaySearchItem `json:"hits"`
}

const pixabayBaseUrl = "https://pixabay.com/api/"

type PixabayApi struct {
	Http    http.Client
	cache   *ReqCache
	memo    cache.Cache
	apiKey  string
	baseUrl string
	log     *log.Logger
}

func NewPixabayApi(cfg *Config, reqCache *ReqCache) PixabayApi {
	api := PixabayApi{
		Http:    http.Client{Timeout: time.Duration(cfg.Download.TimeoutSeconds) * time.Second},
		cache:   reqCache,
		memo:    cache.New(128, cache.WithTTL(1*time.Hour)),
		apiKey:  cfg.Pixabay.Key,
		baseUrl: pixabayBaseUrl,
		log:     log.New(os.Stderr, "(pixabay)", log.LstdFlags),
	}

	return api
}

// Search asks Pixabay for photos matching query and returns at most count
// image URLs, in the order the provider ranked them.
func (api *PixabayApi) Search(query string, count int) ([]string, error) {
	if count < 0 {
		count = 0
	}
	memoKey := query + "|" + strconv.Itoa(count)
	if found, ok := api.memo.Get(memoKey); ok {
		if urls, ok := found.([]string); ok {
			return urls, nil
		}
	}

	qParam := url.Values{}
	qParam.Add("key", api.apiKey)
	qParam.Add("q", query)
	qParam.Add("image_type", "photo")
	qParam.Add("per_page", strconv.Itoa(count))
	getReq, err := newGetRequest(api.baseUrl + "?" + qParam.Encode())
	if err != nil {
		api.log.Println("Failed to create http request:", err.Error())
		return nil, err
	}
	resp, err := api.do(getReq)
	if err != nil {
		api.log.Println("Failed to fetch:", err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		err = fmt.Errorf("HTTP %d", resp.StatusCode)
		api.log.Println("Search request refused:", err.Error())
		return nil, err
	}
	body, err := decodeBody(resp)
	if err != nil {
		api.log.Println("Failed to decode response", err.Error())
		return nil, err
	}

	data := PixabaySearchResult{}
	err = json.NewDecoder(body).Decode(&data)
	if err != nil {
		api.log.Println("Failed to decode response", err.Error())
		return nil, err
	}

	urls := make([]string, 0, len(data.Hits))
	for _, hit := range data.Hits {
		if len(urls) == count {
			break
		}
		if hit.LargeImageUrl == "" {
			continue
		}
		urls = append(urls, hit.LargeImageUrl)
	}
	api.memo.Set(memoKey, urls)
	return urls, nil
}

func (api *PixabayApi) do(req *http.Request) (*http.Response, error) {
	if api.cache != nil {
		return api.cache.CachedFetch(req, &api.Http)
	}
	return api.Http.Do(req)
}
