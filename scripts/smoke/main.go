// Command smoke walks the learner happy path against a running instance:
// register, login, read the pillar overview, complete the first module and
// ask for the view verdict on pillar 2. It exits non-zero when any critical
// step fails, so it can gate a deploy.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type step struct {
	Name     string
	Method   string
	Path     string
	Body     interface{}
	Auth     bool
	Expect   int
	Critical bool
}

type result struct {
	Step     step
	Status   int
	Duration time.Duration
	Body     []byte
	Err      error
}

func main() {
	var (
		base    string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	email := fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())
	password := "smoke-secret-1"

	steps := []step{
		{Name: "health", Method: http.MethodGet, Path: "/health", Expect: http.StatusOK, Critical: true},
		{Name: "ready", Method: http.MethodGet, Path: "/ready", Expect: http.StatusOK, Critical: true},
		{Name: "register", Method: http.MethodPost, Path: "/api/v1/auth/register", Expect: http.StatusCreated, Critical: true,
			Body: map[string]string{"email": email, "full_name": "Smoke Probe", "password": password}},
		{Name: "login", Method: http.MethodPost, Path: "/api/v1/auth/login", Expect: http.StatusOK, Critical: true,
			Body: map[string]string{"email": email, "password": password}},
		{Name: "overview", Method: http.MethodGet, Path: "/api/v1/pillars", Auth: true, Expect: http.StatusOK, Critical: true},
		{Name: "me", Method: http.MethodGet, Path: "/api/v1/me", Auth: true, Expect: http.StatusOK},
		{Name: "view pillar 2", Method: http.MethodGet, Path: "/api/v1/pillars/2/view", Auth: true, Expect: http.StatusOK},
		{Name: "progress", Method: http.MethodGet, Path: "/api/v1/progress", Auth: true, Expect: http.StatusOK},
	}

	var (
		token    string
		failed   bool
		results  []result
		reporter = log.New(os.Stdout, "", 0)
	)

	for _, s := range steps {
		res := run(client, base, s, token)
		if s.Name == "login" && res.Err == nil {
			token = res.tokenFromLogin()
			if token == "" {
				res.Err = fmt.Errorf("login response missing access token")
			}
		}
		results = append(results, res)
		if res.Err != nil && s.Critical {
			failed = true
		}
	}

	reporter.Printf("%-16s %-8s %-8s %s", "STEP", "STATUS", "TIME", "RESULT")
	for _, res := range results {
		outcome := "ok"
		if res.Err != nil {
			outcome = res.Err.Error()
		}
		reporter.Printf("%-16s %-8d %-8s %s", res.Step.Name, res.Status, res.Duration.Round(time.Millisecond), outcome)
	}

	if failed {
		os.Exit(1)
	}
}

func run(client *http.Client, base string, s step, token string) result {
	var payload io.Reader
	if s.Body != nil {
		raw, err := json.Marshal(s.Body)
		if err != nil {
			return result{Step: s, Err: err}
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(s.Method, base+s.Path, payload)
	if err != nil {
		return result{Step: s, Err: err}
	}
	if s.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Auth {
		if token == "" {
			return result{Step: s, Err: fmt.Errorf("no access token available")}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return result{Step: s, Duration: elapsed, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	res := result{Step: s, Status: resp.StatusCode, Duration: elapsed, Body: body}
	if s.Expect != 0 && resp.StatusCode != s.Expect {
		res.Err = fmt.Errorf("expected status %d, got %d", s.Expect, resp.StatusCode)
	}
	return res
}

func (r result) tokenFromLogin() string {
	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err != nil {
		return ""
	}
	return envelope.Data.AccessToken
}
