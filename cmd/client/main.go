/*
Package main is a terminal client for the chat server.

It authenticates over REST, keeps the issued token in memory for the
session, opens one WebSocket connection, joins a room, loads its history,
and then relays lines from stdin as messages. Incoming messages and typing
notifications are rendered as they arrive.
*/
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatapp/internal/app/chat"
	"chatapp/internal/app/store"
)

var (
	addr = flag.String("addr", "localhost:8080", "chat server address")
	room = flag.String("room", "general", "room to join on startup")
)

// apiEnvelope mirrors the server's JSON response shape.
type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

type historyData struct {
	Messages []store.Message `json:"messages"`
}

func main() {
	flag.Parse()

	scanner := bufio.NewScanner(os.Stdin)

	auth := authenticate(scanner)
	fmt.Printf("Signed in as %s\n", auth.User.Username)

	conn := connectWebSocket(auth.Token)
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	var mu sync.Mutex
	state := newChatState(auth.User.Username)

	var writeMu sync.Mutex
	sendEvent := func(eventType chat.EventType, payload any) {
		data, err := chat.EncodeEvent(eventType, payload)
		if err != nil {
			log.Printf("Error encoding %s event: %v", eventType, err)
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending %s event: %v", eventType, err)
		}
	}

	currentRoom := *room
	joinRoom := func(newRoom string) {
		sendEvent(chat.EventJoinRoom, chat.JoinRoomPayload{Room: newRoom})
		currentRoom = newRoom

		mu.Lock()
		state.Reset()
		mu.Unlock()

		loadHistory(auth.Token, newRoom, state, &mu)
		fmt.Printf("-- joined %s --\n", newRoom)
	}

	// Line-buffered stdin gives no per-keystroke events, so a submitted line
	// is the only composing signal available to the debouncer. The notifier
	// hands back the room captured at activity time; its idle timer fires on
	// another goroutine and must not read currentRoom.
	notifier := newTypingNotifier(typingIdle, func(room string, typing bool) {
		sendEvent(chat.EventTyping, chat.TypingPayload{Room: room, Typing: typing})
	})

	done := make(chan struct{})
	go readEvents(conn, state, &mu, done)

	joinRoom(currentRoom)

	fmt.Println("Type a message and press Enter. Commands: /join <room>, /leave, /quit")
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection...")
			writeMu.Lock()
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			writeMu.Unlock()
			return
		default:
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			switch {
			case line == "/quit":
				writeMu.Lock()
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				writeMu.Unlock()
				return

			case line == "/leave":
				sendEvent(chat.EventLeaveRoom, chat.LeaveRoomPayload{Room: currentRoom})
				fmt.Printf("-- left %s --\n", currentRoom)

			case strings.HasPrefix(line, "/join "):
				newRoom := strings.TrimSpace(strings.TrimPrefix(line, "/join "))
				if newRoom != "" {
					joinRoom(newRoom)
				}

			default:
				notifier.Activity(currentRoom)

				tempID := uuid.NewString()
				mu.Lock()
				state.ApplyLocalEcho(tempID, line)
				mu.Unlock()

				sendEvent(chat.EventSendMessage, chat.SendMessagePayload{
					Room:   currentRoom,
					Text:   line,
					TempID: tempID,
				})

				notifier.Stop()
			}
		}
	}
}

// authenticate prompts for credentials and logs in, offering registration
// when the login is rejected.
func authenticate(scanner *bufio.Scanner) authData {
	email := prompt(scanner, "Email: ")
	password := prompt(scanner, "Password: ")

	auth, err := postAuth("/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err == nil {
		return auth
	}
	log.Printf("Login failed: %v", err)

	username := prompt(scanner, "No account? Pick a username to register: ")
	auth, err = postAuth("/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}
	return auth
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

// postAuth calls a REST auth endpoint and decodes the token/user payload.
func postAuth(path string, body map[string]string) (authData, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return authData{}, err
	}

	u := url.URL{Scheme: "http", Host: *addr, Path: path}
	res, err := http.Post(u.String(), "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return authData{}, err
	}
	defer res.Body.Close()

	envelope, err := decodeEnvelope(res.Body)
	if err != nil {
		return authData{}, err
	}

	var auth authData
	if err := json.Unmarshal(envelope.Data, &auth); err != nil {
		return authData{}, err
	}
	return auth, nil
}

// loadHistory fetches the room's recent messages and seeds the display list.
func loadHistory(token, room string, state *chatState, mu *sync.Mutex) {
	u := url.URL{Scheme: "http", Host: *addr, Path: "/api/messages/" + room}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		log.Printf("Error building history request: %v", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("Error loading history: %v", err)
		return
	}
	defer res.Body.Close()

	envelope, err := decodeEnvelope(res.Body)
	if err != nil {
		log.Printf("Error loading history: %v", err)
		return
	}

	var history historyData
	if err := json.Unmarshal(envelope.Data, &history); err != nil {
		log.Printf("Error decoding history: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	for _, m := range history.Messages {
		state.AppendHistory(m.SenderName, m.Body, m.CreatedAt.Format("15:04"))
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.SenderName, m.Body)
	}
}

// decodeEnvelope reads a REST response and rejects non-success business codes.
func decodeEnvelope(body io.Reader) (apiEnvelope, error) {
	var envelope apiEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return apiEnvelope{}, err
	}
	if envelope.Code != 0 {
		return apiEnvelope{}, fmt.Errorf("server error %d: %s", envelope.Code, envelope.Message)
	}
	return envelope, nil
}

func connectWebSocket(token string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	log.Printf("Connecting to %s", u.Host)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect to chat server: %v", err)
	}
	return conn
}

// readEvents renders server events until the connection drops.
func readEvents(conn *websocket.Conn, state *chatState, mu *sync.Mutex, done chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Connection closed: %v", err)
			return
		}

		var event chat.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("Error parsing event: %v", err)
			continue
		}

		switch event.Type {
		case chat.EventReceiveMessage:
			var msg chat.MessagePayload
			if err := json.Unmarshal(event.Payload, &msg); err != nil {
				log.Printf("Error parsing message: %v", err)
				continue
			}

			mu.Lock()
			before := len(state.messages)
			state.ApplyServerMessage(msg)
			appended := len(state.messages) > before
			mu.Unlock()

			// Replaced entries were already printed as the optimistic echo.
			if appended {
				fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04"), msg.SenderName, msg.Body)
			}

		case chat.EventUserTyping:
			var typing chat.TypingUsersPayload
			if err := json.Unmarshal(event.Payload, &typing); err != nil {
				log.Printf("Error parsing typing event: %v", err)
				continue
			}

			mu.Lock()
			state.SetTypingUsers(typing.Usernames)
			line := state.TypingLine()
			mu.Unlock()

			if line != "" {
				fmt.Println(line)
			}

		case chat.EventError:
			var errPayload chat.ErrorPayload
			if err := json.Unmarshal(event.Payload, &errPayload); err != nil {
				continue
			}
			log.Printf("Server error %d: %s", errPayload.Code, errPayload.Message)
		}
	}
}
