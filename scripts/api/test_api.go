// Minimal end-to-end check against a running sentinel server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	baseURL   = getenv("API_URL", "http://localhost:5002")
	jwtSecret = os.Getenv("API_JWT_SECRET")
	client    = &http.Client{Timeout: 5 * time.Minute}
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	token := mintToken()

	doReq("GET", "/healthz", "", nil, nil, http.StatusOK)

	var single struct {
		Result      string   `json:"result"`
		SourceNames []string `json:"source_names"`
	}
	doReq("POST", "/check-single", token, map[string]any{"claim": "The Eiffel Tower is in Paris"}, &single, http.StatusOK)
	log.Printf("check-single: %s (%d sources)", single.Result, len(single.SourceNames))

	var rep map[string]any
	doReq("POST", "/check", token, map[string]any{"text": "Water boils at 100 degrees Celsius at sea level."}, &rep, http.StatusOK)
	if _, ok := rep["verified_claims"]; !ok {
		if _, ok := rep["no_claims_found"]; !ok {
			log.Fatal("check: unexpected response shape")
		}
	}

	var compact []map[string]any
	doReq("POST", "/api/check", token, map[string]any{"text": "hello"}, &compact, http.StatusOK)
	if len(compact) == 0 {
		log.Fatal("api/check: empty list")
	}

	var opening struct {
		OpeningStatement string `json:"opening_statement"`
		DebateID         string `json:"debate_id"`
	}
	topic := "Remote work improves productivity"
	doReq("POST", "/api/debate/start", token, map[string]any{"topic": topic}, &opening, http.StatusOK)
	if opening.OpeningStatement == "" {
		log.Fatal("debate/start: empty opening statement")
	}

	messages := []map[string]string{
		{"role": "assistant", "content": opening.OpeningStatement},
		{"role": "user", "content": "Studies from Stanford found a 13% productivity increase for remote workers."},
	}
	doReq("POST", "/api/debate/respond", token, map[string]any{"topic": topic, "messages": messages}, nil, http.StatusOK)

	var judged struct {
		Judgment struct {
			Winner string `json:"winner"`
		} `json:"judgment"`
	}
	doReq("POST", "/api/debate/judge", token, map[string]any{"topic": topic, "messages": messages}, &judged, http.StatusOK)
	log.Printf("debate %s judged: winner=%s", opening.DebateID, judged.Judgment.Winner)

	doReq("POST", "/api/chatbot/message", token, map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "How do I spot a fake screenshot?"}},
	}, nil, http.StatusOK)

	fmt.Println("✓ all endpoints passed")
}

// mintToken signs a short-lived token when the server requires one.
func mintToken() string {
	if jwtSecret == "" {
		return ""
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "integration-test",
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})
	signed, err := tok.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	return signed
}

func doReq(method, path, token string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "it-"+uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	res, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
	log.Printf("%s %s ok (%.1fs)", method, path, time.Since(start).Seconds())
}
