package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Exercises the auth flow envelopes against a running server.
// Run with: go run integration_runner.go

const baseURL = "http://localhost:8080"

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	fmt.Println("=== upfafrica-backend Integration Test ===")

	email := fmt.Sprintf("it-%d@example.com", time.Now().Unix())
	password := "integrationPass1"

	// 1. Register an account
	fmt.Println("\n1. Registering account...")
	status, env := call(http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     "Integration Test",
	})
	expect("register", status, http.StatusOK, env.Status, "SUCCESS")

	// 2. Login
	fmt.Println("\n2. Logging in...")
	status, env = call(http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	expect("login", status, http.StatusOK, env.Status, "SUCCESS")

	var loginData struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &loginData); err != nil || loginData.Token == "" {
		log.Fatal("login response carried no token")
	}
	fmt.Println("✓ Token issued")

	// 3. Forgot-password validation errors
	fmt.Println("\n3. Forgot-password with empty email...")
	status, env = call(http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": ""})
	expect("forgot-password empty", status, http.StatusBadRequest, env.Status, "BAD_REQUEST")

	fmt.Println("\n4. Forgot-password with unknown email...")
	status, env = call(http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": "unknown@example.com"})
	expect("forgot-password unknown", status, http.StatusNotFound, env.Status, "RECORD_NOT_FOUND")

	// 5. Forgot-password for a real account; the code goes out of band,
	// never into this response.
	fmt.Println("\n5. Forgot-password for registered email...")
	status, env = call(http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": email})
	expect("forgot-password", status, http.StatusOK, env.Status, "SUCCESS")
	if len(env.Data) > 0 && string(env.Data) != "null" {
		log.Fatal("forgot-password leaked data in the response body")
	}

	// 6. Validate-otp structural vs semantic failures
	fmt.Println("\n6. Validate-otp with missing field...")
	status, env = call(http.MethodPost, "/v1/auth/validate-otp", map[string]string{})
	expect("validate-otp missing", status, http.StatusBadRequest, env.Status, "BAD_REQUEST")

	fmt.Println("\n7. Validate-otp with a wrong code...")
	status, env = call(http.MethodPost, "/v1/auth/validate-otp", map[string]string{"otp": "12334"})
	expect("validate-otp wrong", status, http.StatusOK, env.Status, "FAILURE")

	// 8. Reset-password with a stale code
	fmt.Println("\n8. Reset-password with a stale code...")
	status, env = call(http.MethodPut, "/v1/auth/reset-password", map[string]string{
		"code":        "123",
		"newPassword": "testPassword",
	})
	expect("reset-password stale", status, http.StatusOK, env.Status, "FAILURE")

	// 9. Authenticated endpoint
	fmt.Println("\n9. Fetching /v1/auth/me with bearer token...")
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginData.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal("me request failed:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("me returned %d", resp.StatusCode)
	}
	fmt.Println("✓ Authenticated fetch working")

	fmt.Println("\n=== Test Complete ===")
	fmt.Println("\nSummary:")
	fmt.Println("✓ Register and login working")
	fmt.Println("✓ forgot-password envelope statuses correct (BAD_REQUEST / RECORD_NOT_FOUND / SUCCESS)")
	fmt.Println("✓ validate-otp splits structural (400) from semantic (200 FAILURE) outcomes")
	fmt.Println("✓ reset-password rejects stale codes as 200 FAILURE")
	fmt.Println("✓ Reset codes are never echoed in responses")
	fmt.Println("\nNote: end-to-end reset needs the mail worker wired to a MAIL_WEBHOOK_URL you can read")
}

func call(method, path string, body any) (int, envelope) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func expect(name string, gotHTTP, wantHTTP int, gotTag, wantTag string) {
	if gotHTTP != wantHTTP || gotTag != wantTag {
		log.Fatalf("%s: got %d %q, want %d %q", name, gotHTTP, gotTag, wantHTTP, wantTag)
	}
	fmt.Printf("✓ %s → %d %s\n", name, gotHTTP, gotTag)
}
