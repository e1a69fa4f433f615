package server

import (
	"fmt"
	"io"
	"os"
)

type endpoint struct {
	pattern     string
	description string
	protected   bool
}

var endpoints = []endpoint{
	{"GET  /health", "Health check", false},
	{"GET  /stats", "Server statistics", false},
	{"POST /ats/analyze", "Score a resume, optionally against a job description", true},
	{"POST /validate", "Check resume structure and completeness", true},
	{"POST /extract", "Structure plain resume text and score it", true},
}

// displayServerInfo prints the endpoints and the protection in effect
func (s *Server) displayServerInfo() {
	s.writeServerInfo(os.Stdout)
}

func (s *Server) writeServerInfo(w io.Writer) {
	fmt.Fprintln(w, "Available endpoints:")
	for _, e := range endpoints {
		desc := e.description
		if e.pattern == "POST /extract" && s.extractor == nil {
			desc = "DISABLED (no AI API key configured)"
		}
		fmt.Fprintf(w, "  %-18s - %s\n", e.pattern, desc)
	}

	if n := len(s.APIKeys); n > 0 {
		fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Fprintln(w, "Send 'X-API-Key: <your-key>' with POST requests")
	} else {
		fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
		fmt.Fprintln(w, "WARNING: POST endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1<<20))
	} else {
		fmt.Fprintln(w, "Request size limit: DISABLED")
	}

	rl := s.RateLimit
	if rl == nil || !rl.Enabled {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
		return
	}
	fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n", rl.RequestsPerMin, rl.BurstCapacity)
	if rl.ByAPIKey {
		fmt.Fprintln(w, "  - per API key")
	}
	if rl.ByIP {
		fmt.Fprintln(w, "  - per client IP")
	}
}
