package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeCreateGame   = 101
	MsgTypeStartGame    = 104
	MsgTypePlayerAction = 201
)

// send frames and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	// Create a game as the merchant against three automated players.
	create := map[string]interface{}{
		"name": "demo",
		"role": "merchant",
		"bots": []string{"scholar", "diplomat", "explorer"},
	}
	createData, _ := json.Marshal(create)
	log.Println("Sending Create Game request...")
	if err := send(c, MsgTypeCreateGame, createData); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: start | begin <color> | roll | branch <color> | draw | end-card | end | ability")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			if fields[0] == "start" {
				if err := send(c, MsgTypeStartGame, []byte("{}")); err != nil {
					log.Println("Write error:", err)
					return
				}
				log.Println("-> SENT: start game")
				continue
			}

			action := map[string]string{}
			switch fields[0] {
			case "begin":
				if len(fields) < 2 {
					log.Println("usage: begin <color>")
					continue
				}
				action["type"] = "choose_start"
				action["path"] = fields[1]
			case "roll":
				action["type"] = "roll"
			case "branch":
				if len(fields) < 2 {
					log.Println("usage: branch <color>")
					continue
				}
				action["type"] = "choose_branch"
				action["path"] = fields[1]
			case "draw":
				action["type"] = "draw_path_card"
			case "end-card":
				action["type"] = "draw_end_card"
			case "end":
				action["type"] = "end_turn"
			case "ability":
				action["type"] = "use_ability"
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}

			actionData, _ := json.Marshal(action)
			if err := send(c, MsgTypePlayerAction, actionData); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", action["type"])
		}
	}
}
