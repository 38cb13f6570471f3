package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler is the stand-in presentation shell: it renders session state
// over a websocket and forwards UI events into the quiz use cases. A
// server-side ticker drives the per-question countdown.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Choice int `json:"choice"`
}

type pausedPayload struct {
	Paused bool `json:"paused"`
}

type completedPayload struct {
	Outcome   domain.Outcome `json:"outcome"`
	Saved     bool           `json:"saved"`
	SaveError string         `json:"saveError,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a session for the given identity,
// and runs it to completion or disconnect. Inbound message types:
// answer {choice}, next, pause.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")
	if name == "" || email == "" {
		http.Error(w, "missing name or email", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), name, email)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	// A disconnect mid-quiz abandons the run without persisting.
	defer h.service.Abandon(session)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	trySend := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	var finishOnce sync.Once
	finish := func() {
		finishOnce.Do(func() {
			outcome, err := h.service.CompleteAndRecord(session)
			if errors.Is(err, domain.ErrNotCompleted) {
				log.Printf("completion requested before session finished: %v", err)
				trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				return
			}
			payload := completedPayload{Outcome: outcome, Saved: err == nil}
			if err != nil {
				// The score survives a persistence failure; report it alongside.
				log.Printf("failed to save result: %v", err)
				payload.SaveError = err.Error()
			}
			trySend(outboundMessage[any]{Type: "completed", Payload: payload})
		})
	}

	// lastRendered tracks which question the client has seen, shared
	// between the reader loop and the ticker goroutine.
	var lastRendered atomic.Int64
	sendQuestion := func() {
		if view, err := session.CurrentQuestion(); err == nil {
			lastRendered.Store(int64(view.Number))
			trySend(outboundMessage[any]{Type: "question", Payload: view})
		}
	}

	sendQuestion()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-closeSignals:
				return
			case <-ticker.C:
				prog := session.Tick()
				if prog.State == app.StateCompleted {
					finish()
					return
				}
				if int64(prog.QuestionNumber) != lastRendered.Load() {
					// The countdown hit zero and auto-advanced.
					sendQuestion()
					continue
				}
				trySend(outboundMessage[any]{Type: "timer", Payload: prog})
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			if err := session.SelectAnswer(payload.Choice); err != nil {
				log.Printf("select answer rejected: %v", err)
				trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			sendQuestion()
		case "next":
			prog, err := session.Advance()
			if err != nil {
				log.Printf("advance rejected: %v", err)
				trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if prog.State == app.StateCompleted {
				finish()
				continue
			}
			sendQuestion()
		case "pause":
			paused, err := session.TogglePause()
			if err != nil {
				log.Printf("pause rejected: %v", err)
				trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			trySend(outboundMessage[any]{Type: "paused", Payload: pausedPayload{Paused: paused}})
		default:
			trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}
