// Package influxdbtest provides an in-process fake of the InfluxDB 1.x HTTP
// endpoints used by graphios: /ping, /query and the /api/v2/write
// compatibility endpoint.
package influxdbtest

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adrianlzt/graphios/internal/infrastructure/influxdb"
)

// Write is one accepted write request.
type Write struct {
	Database  string
	Precision string
	Lines     []string
}

// Server is a fake InfluxDB server backed by httptest.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	databases  map[string]bool
	writes     []Write
	queries    []string
	requests   int
	delay      time.Duration
	failStatus int
	failDB     map[string]int
	delayDB    map[string]time.Duration
	queryFail  int
	queryError string
	username   string
	password   string
}

// NewServer starts a fake server knowing the given databases.
// It is closed automatically when the test ends.
func NewServer(t testing.TB, databases ...string) *Server {
	t.Helper()

	s := &Server{
		databases: make(map[string]bool),
		failDB:    make(map[string]int),
		delayDB:   make(map[string]time.Duration),
	}
	for _, db := range databases {
		s.databases[db] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/api/v2/write", s.handleWrite)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// RequireAuth makes the server reject requests without these credentials.
func (s *Server) RequireAuth(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username, s.password = username, password
}

// SetDelay makes every write wait before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// DelayDatabase makes writes to one database wait before answering.
func (s *Server) DelayDatabase(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delayDB[name] = d
}

// SetFailStatus makes every write answer with status. Zero restores normal behaviour.
func (s *Server) SetFailStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// FailDatabase makes writes to one database answer with status.
func (s *Server) FailDatabase(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDB[name] = status
}

// SetQueryFailStatus makes every /query request answer with status.
func (s *Server) SetQueryFailStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryFail = status
}

// SetQueryResultError makes /query answer 200 with msg as the statement
// error, the way InfluxDB 1.x reports a rejected InfluxQL statement.
// The statement is not executed.
func (s *Server) SetQueryResultError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryError = msg
}

// Member returns the server as a cluster member.
func (s *Server) Member() influxdb.Server {
	host, port, _ := net.SplitHostPort(strings.TrimPrefix(s.URL, "http://"))
	p, _ := strconv.Atoi(port)
	return influxdb.Server{Host: host, Port: p}
}

// Writes returns the accepted writes in arrival order.
func (s *Server) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.writes...)
}

// Points returns the lines written to database.
func (s *Server) Points(database string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []string
	for _, w := range s.writes {
		if w.Database == database {
			lines = append(lines, w.Lines...)
		}
	}
	return lines
}

// Queries returns every InfluxQL statement received on /query.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Requests returns how many write requests reached the server, accepted or not.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// HasDatabase reports whether the database exists.
func (s *Server) HasDatabase(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.databases[name]
}

func (s *Server) authorised(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	wantUser, wantPass := s.username, s.password
	s.mu.Unlock()

	if wantUser == "" && wantPass == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if ok && user == wantUser && pass == wantPass {
		return true
	}
	writeError(w, http.StatusUnauthorized, "authorization failed")
	return false
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !s.authorised(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.Form.Get("q")

	s.mu.Lock()
	s.queries = append(s.queries, q)
	if s.queryFail != 0 {
		status := s.queryFail
		s.mu.Unlock()
		writeError(w, status, "simulated query failure")
		return
	}
	if s.queryError != "" {
		msg := s.queryError
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"results":[{"statement_id":0,"error":%q}]}`, msg)
		return
	}
	const prefix = "CREATE DATABASE "
	if strings.HasPrefix(q, prefix) {
		name := strings.Trim(strings.TrimPrefix(q, prefix), `"`)
		s.databases[name] = true
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"results":[{"statement_id":0}]}`)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	db := r.URL.Query().Get("bucket")

	s.mu.Lock()
	s.requests++
	delay, failStatus := s.delay, s.failStatus
	if d, ok := s.delayDB[db]; ok {
		delay = d
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if !s.authorised(w, r) {
		return
	}
	if failStatus != 0 {
		writeError(w, failStatus, "simulated failure")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status := s.failDB[db]; status != 0 {
		writeError(w, status, "simulated failure")
		return
	}
	if !s.databases[db] {
		writeError(w, http.StatusNotFound, fmt.Sprintf("database not found: %q", db))
		return
	}
	s.writes = append(s.writes, Write{
		Database:  db,
		Precision: r.URL.Query().Get("precision"),
		Lines:     strings.Split(strings.TrimSpace(string(body)), "\n"),
	})
	w.WriteHeader(http.StatusNoContent)
}

// writeError answers the way InfluxDB 1.x does: a JSON body plus the
// X-Influxdb-Error header.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Influxdb-Error", msg)
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, msg)
}
