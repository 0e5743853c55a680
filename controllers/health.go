package controllers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health reports that the process is serving requests
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"message":   "Medical Store API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// NotFound answers unknown routes with the JSON envelope
func NotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Message: "Route not found"})
}
