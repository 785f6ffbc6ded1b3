// Package server is the HTTP job front end. Each accepted request spawns one
// booking run as a child process, relays its combined output back to the
// caller, and maps the exit code onto the response status. The process
// boundary is deliberate: a wedged or crashed browser run can never take the
// front end down with it.
package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/log"
)

const maxPayloadBytes = 1 << 20

type Server struct {
	cfg      config.Config
	logger   log.Logger
	store    *runStore
	upgrader websocket.Upgrader

	// command builds the child process for a payload. Overridable in tests.
	command func(payload string) *exec.Cmd
}

func New(cfg config.Config, logger log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		store:    newRunStore(),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		command:  selfRunCommand,
	}
}

// selfRunCommand re-invokes this binary's run command with the payload
// carried in the environment.
func selfRunCommand(payload string) *exec.Cmd {
	exe, err := os.Executable()
	if err != nil {
		exe = "bookpilot"
	}
	cmd := exec.Command(exe, "run")
	cmd.Env = append(os.Environ(), "BOOKPILOT_PAYLOAD="+payload)
	return cmd
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/runs", s.handleCreateRun).Methods(http.MethodPost)
	router.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}/logs", s.handleStreamLogs).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return router
}

func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.cfg.ListenAddr).Msg("job front end listening")
	return http.ListenAndServe(s.cfg.ListenAddr, s.Router())
}

// handleCreateRun validates the payload, spawns the runner, and blocks until
// it exits. Exit 0 maps to 200, anything else to 500, with the transcript
// echoed either way.
func (s *Server) handleCreateRun(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}
	if _, err := booking.ParseRequest(body); err != nil {
		http.Error(w, fmt.Sprintf("invalid booking request: %v", err), http.StatusBadRequest)
		return
	}

	rec := s.store.create()
	s.logger.Info().Str("run_id", rec.ID).Msg("accepted booking run")

	exitCode, runErr := s.execute(rec, string(body))

	status, _, transcript := rec.snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Run-ID", rec.ID)
	if runErr != nil || exitCode != 0 {
		s.logger.Warn().Str("run_id", rec.ID).Int("exit_code", exitCode).Msg("booking run failed")
		w.WriteHeader(http.StatusInternalServerError)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	fmt.Fprintf(w, "run %s: %s (exit %d)\n\n", rec.ID, status, exitCode)
	fmt.Fprint(w, strings.Join(transcript, "\n"))
}

// execute runs the child process, feeding both output pipes into the run
// record line by line.
func (s *Server) execute(rec *runRecord, payload string) (int, error) {
	cmd := s.command(payload)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		rec.finish(RunFailed, -1)
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		rec.finish(RunFailed, -1)
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		rec.finish(RunFailed, -1)
		return -1, fmt.Errorf("starting runner: %w", err)
	}
	rec.mu.Lock()
	rec.status = RunRunning
	rec.mu.Unlock()

	var wg sync.WaitGroup
	for _, pipe := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
			for scanner.Scan() {
				rec.appendLine(scanner.Text())
			}
		}(pipe)
	}
	wg.Wait()

	err = cmd.Wait()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
		err = nil
	} else if err != nil {
		exitCode = -1
	}

	if exitCode == 0 && err == nil {
		rec.finish(RunSucceeded, exitCode)
	} else {
		rec.finish(RunFailed, exitCode)
	}
	return exitCode, err
}

func (s *Server) handleGetRun(w http.ResponseWriter, req *http.Request) {
	rec, ok := s.store.get(mux.Vars(req)["id"])
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	status, exitCode, transcript := rec.snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":         rec.ID,
		"status":     status,
		"exit_code":  exitCode,
		"transcript": transcript,
	})
}

// handleStreamLogs upgrades to a websocket and streams the transcript:
// everything so far, then lines as they arrive until the run ends.
func (s *Server) handleStreamLogs(w http.ResponseWriter, req *http.Request) {
	rec, ok := s.store.get(mux.Vars(req)["id"])
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	replay, updates := rec.subscribe()
	for _, line := range replay {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
	if updates == nil {
		return
	}
	for line := range updates {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
}
