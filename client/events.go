package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

type event struct {
	Event    string `json:"event"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// ListenEvents connects to the server's change stream and invalidates cache
// tags for every entity change pushed by the server, so other sessions'
// writes show up without polling. Blocks until the context is cancelled or
// the connection drops.
func (a *API) ListenEvents(ctx context.Context) error {
	token, err := a.Client.token(ctx)
	if err != nil {
		return err
	}

	wsURL := strings.Replace(a.Client.baseURL, "http", "ws", 1) + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		a.Cache.Invalidate(tagsFor(ev)...)
	}
}

func tagsFor(ev event) []Tag {
	var tagType string
	switch ev.Resource {
	case "task":
		tagType = TagTask
	case "category":
		tagType = TagCategory
	default:
		return nil
	}
	tags := []Tag{{Type: tagType}}
	if ev.ID != "" {
		tags = append(tags, Tag{Type: tagType, ID: ev.ID})
	}
	return tags
}
