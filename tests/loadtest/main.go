package main

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numSessions  = 4
	numRooms     = 20
	eventID      = "38000"
	eventURLKey  = "loadtest"
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
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
	fmt.Println("=== SrTrack Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Sessions: %d | Rooms per session: %d\n\n", numSessions, numRooms)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: open tracking sessions
	fmt.Println("\n--- Phase 1: Opening sessions (POST /track) ---")
	var sessions []string
	for i := 0; i < numSessions; i++ {
		id, r := doTrack(i)
		if r.err {
			fmt.Printf("  track #%d failed with status %d\n", i, r.status)
			continue
		}
		sessions = append(sessions, id)
	}
	if len(sessions) == 0 {
		fmt.Println("FAILED: no session opened")
		return
	}
	fmt.Printf("  %d sessions open\n", len(sessions))

	// Wait for the first ticks
	fmt.Println("\nWaiting 8s for the first tick...")
	time.Sleep(8 * time.Second)

	// Phase 2: read-heavy load
	fmt.Println("\n--- Phase 2: Read load (snapshot, log, needed, events) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		session := sessions[rng.Intn(len(sessions))]
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doGet("GET /snapshot", "/snapshot?session="+session, 200)
		case r < 0.70:
			return doGet("GET /log", fmt.Sprintf("/log?session=%s&room=%d", session, rng.Intn(numRooms)+1), 200)
		case r < 0.90:
			target, rival := rng.Intn(numRooms)+1, rng.Intn(numRooms)+1
			// 422 is expected while a room has no point yet
			return doGet("GET /needed", fmt.Sprintf("/needed?session=%s&target=%d&rival=%d", session, target, rival), 200, 422)
		default:
			return doGet("GET /events", "/events", 200)
		}
	})

	// Phase 3: close sessions
	fmt.Println("\n--- Phase 3: Closing sessions (POST /untrack) ---")
	for _, id := range sessions {
		r := doUntrack(id)
		if r.err {
			fmt.Printf("  untrack %s failed with status %d\n", id, r.status)
		}
	}
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
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
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
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

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doTrack(i int) (string, result) {
	rooms := make([]string, numRooms)
	for j := range rooms {
		rooms[j] = fmt.Sprintf("%d", j+1)
	}
	body := map[string]interface{}{
		"event_id":       eventID,
		"event_url_key":  fmt.Sprintf("%s-%d", eventURLKey, i),
		"is_event_block": false,
		"rooms":          rooms,
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/track", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return "", result{"POST /track", 0, lat, true}
	}
	defer resp.Body.Close()

	var created struct {
		SessionID string `json:"session_id"`
	}
	if resp.StatusCode != 201 || json.NewDecoder(resp.Body).Decode(&created) != nil {
		return "", result{"POST /track", resp.StatusCode, lat, true}
	}
	return created.SessionID, result{"POST /track", resp.StatusCode, lat, false}
}

func doUntrack(id string) result {
	data, _ := json.Marshal(map[string]string{"session_id": id})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/untrack", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /untrack", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /untrack", resp.StatusCode, lat, resp.StatusCode != 204}
}

func doGet(endpoint, path string, accepted ...int) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	failed := true
	for _, code := range accepted {
		if resp.StatusCode == code {
			failed = false
		}
	}
	return result{endpoint, resp.StatusCode, lat, failed}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
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
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
