package main

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"time"
)

const responseTTL = 24 * time.Hour

// ReqCache replays stored HTTP responses for requests it has seen before,
// keyed by a hash of the full request dump.
type ReqCache struct {
	store *Store
	log   *log.Logger
}

func NewReqCache(store *Store) *ReqCache {
	rc := ReqCache{
		store: store,
		log:   log.New(os.Stderr, "(cache) ", log.LstdFlags),
	}
	rc.store.DeleteBefore(time.Now().Unix())
	return &rc
}

// CachedFetch serves req from the store when an unexpired copy exists and
// performs the real exchange otherwise. Only 2xx responses are recorded.
func (rc *ReqCache) CachedFetch(req *http.Request, client *http.Client) (*http.Response, error) {
	reqBytes, _ := httputil.DumpRequest(req, true)
	md5Hash := md5.Sum(reqBytes)
	reqHash := hex.EncodeToString(md5Hash[:])
	data, ok := rc.store.GetResponse(reqHash)
	if ok {
		res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
		if err == nil {
			return res, nil
		}
		rc.log.Println("Problems decoding cached result", err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return resp, nil
	}
	respBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, err
	}
	rc.log.Println("MISS", req.URL.Host)
	rc.store.StoreResponse(reqHash, respBytes, time.Now().Add(responseTTL).Unix())
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(respBytes)), req)
}
