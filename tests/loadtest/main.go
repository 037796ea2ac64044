package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:8080"
	numWorkers   = 20
	testDuration = 10 * time.Second
	numAddresses = 200
	maxPoints    = 600
)

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== snapshotd load test ===")
	fmt.Printf("Workers: %d | Duration: %s | Addresses: %d\n\n", numWorkers, testDuration, numAddresses)

	fmt.Print("Waiting for server... ")
	if !waitForServer() {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding snapshots (POST /snapshot) ---")
	runPhase(testDuration, doPost)

	fmt.Println("\n--- Phase 2: Read-heavy (10% POST, 85% GET, 5% DELETE) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doPost(rng)
		case r < 0.95:
			return doGet(rng)
		default:
			return doDelete(rng)
		}
	})
}

func waitForServer() bool {
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func address(rng *rand.Rand) string {
	return fmt.Sprintf("inj1loadtest%030d", rng.Intn(numAddresses))
}

func snapshotURL(addr string) string {
	return baseURL + "/snapshot?address=" + url.QueryEscape(addr)
}

func randomPayload(rng *rand.Rand) map[string]any {
	n := rng.Intn(maxPoints) + 1
	labels := make([]string, n)
	data := make([]float64, n)
	times := make([]int64, n)
	start := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		labels[i] = ts.Format(time.DateTime)
		data[i] = rng.Float64() * 1000
		times[i] = ts.UnixMilli()
	}
	return map[string]any{
		"stake": map[string]any{"labels": labels, "data": data},
		"wd":    map[string]any{"labels": labels[:n/2], "values": data[:n/2], "times": times[:n/2]},
		"nw":    map[string]any{"times": times, "usd": data, "inj": data},
	}
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(all, duration)
}

func printResults(all map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(all))
	for ep := range all {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-18s %8s %6s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 68))

	for _, ep := range endpoints {
		s := all[ep]
		totalOps += s.count
		totalErrors += s.errors
		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
		fmt.Printf("  %-18s %8d %6d %10s %10s %10s\n", ep, s.count, s.errors,
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 68))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func send(endpoint string, req *http.Request, want int) result {
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func doPost(rng *rand.Rand) result {
	data, _ := json.Marshal(randomPayload(rng))
	req, _ := http.NewRequest(http.MethodPost, snapshotURL(address(rng)), bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return send("POST /snapshot", req, http.StatusOK)
}

func doGet(rng *rand.Rand) result {
	req, _ := http.NewRequest(http.MethodGet, snapshotURL(address(rng)), nil)
	return send("GET /snapshot", req, http.StatusOK)
}

func doDelete(rng *rand.Rand) result {
	req, _ := http.NewRequest(http.MethodDelete, snapshotURL(address(rng)), nil)
	return send("DELETE /snapshot", req, http.StatusOK)
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
