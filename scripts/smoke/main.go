// Command smoke runs an end-to-end pass against a running API instance:
// institute registration, pre-registration, activation, assignment flow,
// and the dashboard. Exits non-zero on the first failed step.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type step struct {
	Name   string
	Method string
	Path   string
	Token  string
	Body   map[string]interface{}
	Expect int
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func main() {
	var (
		base    string
		prefix  string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	institute := fmt.Sprintf("smoke-institute-%d", time.Now().Unix())
	adminEmail := fmt.Sprintf("admin-%d@smoke.test", time.Now().Unix())
	studentEmail := fmt.Sprintf("student-%d@smoke.test", time.Now().Unix())

	run := func(s step) envelope {
		env, status, err := do(client, base+prefix, s)
		if err != nil {
			log.Fatalf("step %q failed: %v", s.Name, err)
		}
		if status != s.Expect {
			detail := env.Message
			if env.Error != "" {
				detail = env.Error
			}
			log.Fatalf("step %q: expected status %d, got %d (%q)", s.Name, s.Expect, status, detail)
		}
		fmt.Printf("ok  %-28s %d\n", s.Name, status)
		return env
	}

	run(step{
		Name: "superadmin signup", Method: http.MethodPost, Path: "/auth/signup", Expect: http.StatusCreated,
		Body: map[string]interface{}{
			"firstName": "Smoke", "lastName": "Admin",
			"email": adminEmail, "password": "secret1", "confirmPassword": "secret1",
			"userType": "SuperAdmin", "instituteName": institute,
		},
	})

	loginEnv := run(step{
		Name: "superadmin login", Method: http.MethodPost, Path: "/auth/login", Expect: http.StatusOK,
		Body: map[string]interface{}{"email": adminEmail, "password": "secret1", "instituteName": institute},
	})
	adminToken := tokenFrom(loginEnv)

	run(step{
		Name: "pre-register student", Method: http.MethodPost, Path: "/users/students", Token: adminToken, Expect: http.StatusCreated,
		Body: map[string]interface{}{"firstName": "Smoke", "lastName": "Student", "email": studentEmail},
	})

	run(step{
		Name: "student activation", Method: http.MethodPost, Path: "/auth/signup", Expect: http.StatusCreated,
		Body: map[string]interface{}{
			"firstName": "Smoke", "lastName": "Student",
			"email": studentEmail, "password": "secret2", "confirmPassword": "secret2",
			"userType": "Student", "instituteName": institute,
		},
	})

	studentLogin := run(step{
		Name: "student login", Method: http.MethodPost, Path: "/auth/login", Expect: http.StatusOK,
		Body: map[string]interface{}{"email": studentEmail, "password": "secret2", "instituteName": institute},
	})
	studentToken := tokenFrom(studentLogin)

	created := run(step{
		Name: "create assignment", Method: http.MethodPost, Path: "/assignments", Token: adminToken, Expect: http.StatusCreated,
		Body: map[string]interface{}{
			"title":   "Smoke Assignment",
			"dueDate": time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		},
	})
	var assignment struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created.Data, &assignment); err != nil || assignment.ID == "" {
		log.Fatalf("create assignment: missing assignment id in response")
	}

	run(step{
		Name: "submit assignment", Method: http.MethodPost,
		Path: "/assignments/" + assignment.ID + "/submissions", Token: studentToken, Expect: http.StatusCreated,
	})
	run(step{
		Name: "duplicate submission", Method: http.MethodPost,
		Path: "/assignments/" + assignment.ID + "/submissions", Token: studentToken, Expect: http.StatusConflict,
	})
	run(step{
		Name: "student feed", Method: http.MethodGet, Path: "/assignments/feed", Token: studentToken, Expect: http.StatusOK,
	})
	run(step{
		Name: "journal entry", Method: http.MethodPost, Path: "/journal", Token: studentToken, Expect: http.StatusCreated,
		Body: map[string]interface{}{"mood": "Happy", "text": "smoke test entry"},
	})
	run(step{
		Name: "dashboard overview", Method: http.MethodGet, Path: "/dashboard", Token: adminToken, Expect: http.StatusOK,
	})

	fmt.Println("smoke run passed")
	os.Exit(0)
}

func do(client *http.Client, base string, s step) (envelope, int, error) {
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if s.Body != nil {
		payload, err := json.Marshal(s.Body)
		if err != nil {
			return envelope{}, 0, err
		}
		body = bytes.NewBuffer(payload)
	}
	req, err := http.NewRequest(s.Method, base+s.Path, body)
	if err != nil {
		return envelope{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return envelope{}, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return env, resp.StatusCode, nil
}

func tokenFrom(env envelope) string {
	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &login); err != nil || login.AccessToken == "" {
		log.Fatal("login response missing access token")
	}
	return login.AccessToken
}
