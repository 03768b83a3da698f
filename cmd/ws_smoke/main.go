package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/ws"
)

type smoke struct {
	conn *websocket.Conn
	seq  int
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	email := flag.String("email", "smoke@example.com", "account email")
	password := flag.String("password", "password123", "account password")
	flag.Parse()

	logger.Init("info", false)

	token, err := signIn(*addr, *email, *password)
	if err != nil {
		logger.Fatal("sign in failed", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *addr, token), nil)
	if err != nil {
		logger.Fatal("dial failed", "error", err)
	}
	defer conn.Close()

	s := &smoke{conn: conn}
	if _, err := s.await(ws.MsgReady, ""); err != nil {
		logger.Fatal("no ready message", "error", err)
	}

	s.mustCall("tasks.create", map[string]any{"title": "Buy milk", "description": ""})

	var tasks []domain.Task
	s.mustDecode(s.mustCall("tasks.list", nil), &tasks)
	if len(tasks) == 0 || tasks[0].Title != "Buy milk" {
		logger.Fatal("created task not listed", "tasks", len(tasks))
	}
	id := tasks[0].ID
	logger.Info("task created", "id", id, "completed", tasks[0].Completed)

	s.mustCall("tasks.toggle", map[string]any{"id": id, "completed": true})
	s.mustDecode(s.mustCall("tasks.list", map[string]any{"filter": "completed"}), &tasks)
	if !containsTask(tasks, id) {
		logger.Fatal("toggled task missing from completed view", "id", id)
	}

	s.mustCall("tasks.update", map[string]any{"id": id, "description": "2 litres"})
	s.mustCall("tasks.delete", map[string]any{"id": id})

	s.mustDecode(s.mustCall("tasks.list", nil), &tasks)
	if containsTask(tasks, id) {
		logger.Fatal("deleted task still listed", "id", id)
	}

	logger.Info("smoke test finished")
}

// signIn logs in, registering the account first when needed.
func signIn(addr, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	for _, path := range []string{"/api/auth/login", "/api/auth/register"} {
		res, err := http.Post("http://"+addr+path, "application/json", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		var out struct {
			Token string `json:"token"`
		}
		err = json.NewDecoder(res.Body).Decode(&out)
		res.Body.Close()
		if err == nil && out.Token != "" {
			return out.Token, nil
		}
	}
	return "", fmt.Errorf("could not sign in as %s", email)
}

func (s *smoke) mustCall(procedure string, input any) any {
	s.seq++
	id := strconv.Itoa(s.seq)

	msg := ws.Message{Type: ws.MsgCall, ID: id, Procedure: procedure}
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			logger.Fatal("encode input", "error", err)
		}
		msg.Input = raw
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		logger.Fatal("write failed", "procedure", procedure, "error", err)
	}

	reply, err := s.await(ws.MsgResult, id)
	if err != nil {
		logger.Fatal("call failed", "procedure", procedure, "error", err)
	}
	logger.Info("call ok", "procedure", procedure)
	return reply.Data
}

// await reads until a message of type typ (and correlation id, if set)
// arrives. An error reply for the same id fails the wait.
func (s *smoke) await(typ, id string) (*ws.Message, error) {
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = s.conn.SetReadDeadline(deadline)
		var msg ws.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			return nil, err
		}
		if msg.Type == ws.MsgError && msg.ID == id && msg.Error != nil {
			return nil, fmt.Errorf("%s: %s", msg.Error.Code, msg.Error.Message)
		}
		if msg.Type == typ && (id == "" || msg.ID == id) {
			return &msg, nil
		}
	}
}

func (s *smoke) mustDecode(data any, dst any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Fatal("re-encode result", "error", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Fatal("decode result", "error", err)
	}
}

func containsTask(tasks []domain.Task, id int64) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
