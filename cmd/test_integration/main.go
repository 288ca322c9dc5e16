package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Smoke test against a running server whose store holds the seed graph from
// test/integration.

func main() {
	baseURL := os.Getenv("PHYSIOKG_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Println("Starting smoke test...")

	fmt.Println("1. Health...")
	if !check(client, baseURL+"/healthz", http.StatusOK, nil) {
		fail("Health")
	}

	fmt.Println("2. Search...")
	var search struct {
		Conditions []string `json:"conditions"`
	}
	if !check(client, baseURL+"/api/search?q=shoulder", http.StatusOK, &search) || len(search.Conditions) == 0 {
		fail("Search")
	}
	fmt.Printf("   found %v\n", search.Conditions)

	fmt.Println("3. Empty search is rejected...")
	if !check(client, baseURL+"/api/search?q=", http.StatusBadRequest, nil) {
		fail("Empty search")
	}

	fmt.Println("4. Reasoning...")
	var rec map[string]json.RawMessage
	if !check(client, baseURL+"/api/reasoning/"+url.PathEscape(search.Conditions[0]), http.StatusOK, &rec) {
		fail("Reasoning")
	}
	for _, key := range []string{"condition", "impairments", "assessments", "interventions", "exercises", "redFlags", "medications", "outcomeMeasures"} {
		if _, ok := rec[key]; !ok {
			fail("Reasoning: missing " + key)
		}
	}

	fmt.Println("5. Unknown condition...")
	if !check(client, baseURL+"/api/reasoning/"+url.PathEscape("No Such Condition"), http.StatusNotFound, nil) {
		fail("Unknown condition")
	}

	fmt.Println("PASSED")
}

func check(client *http.Client, target string, want int, out interface{}) bool {
	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Unexpected status %d (want %d): %s\n", resp.StatusCode, want, string(body))
		return false
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			fmt.Printf("Invalid JSON: %v\n", err)
			return false
		}
	}
	return true
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}
